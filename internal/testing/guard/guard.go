// Package guard forces test mode before any application init code runs.
// Import it for side effects from test packages that touch runtime wiring.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("INKWELL_TEST_MODE") == "" {
			_ = os.Setenv("INKWELL_TEST_MODE", "1")
		}
	})
}
