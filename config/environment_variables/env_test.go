package environment_variables

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnvAppliesDefaultsAndOverrides(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "sqlite")
	t.Setenv("ALLOWED_CORS_HOSTS", "https://a.example,*.b.example")
	before := time.Now()

	LoadFromEnv()

	envs := Current()
	assert.Equal(t, "sqlite", envs.CACHE_BACKEND)
	assert.Equal(t, 8080, envs.HTTP_PORT)
	assert.Equal(t, 100*time.Millisecond, envs.BATCH_DEBOUNCE)
	assert.Equal(t, []string{"https://a.example", "*.b.example"}, envs.ALLOWED_CORS_HOSTS)
	assert.False(t, ReloadedAt().Before(before))
}

func TestCurrentIsSafeDuringReload(t *testing.T) {
	t.Setenv("ALLOWED_CORS_HOSTS", "https://a.example")
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				LoadFromEnv()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hosts := Current().ALLOWED_CORS_HOSTS
				if len(hosts) > 0 {
					hosts[0] = "mutated"
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"https://a.example"}, Current().ALLOWED_CORS_HOSTS)
}
