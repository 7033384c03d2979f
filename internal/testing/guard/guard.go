package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("FACTECHO_TEST_MODE") == "" {
			_ = os.Setenv("FACTECHO_TEST_MODE", "1")
		}
	})
}
