package cloud

import "fmt"

// NewFactory builds a Factory backed by pre-constructed per-provider
// drivers. Pools with an unknown provider produce an error the caller
// should surface as invalid_spec.
func NewFactory(drivers map[string]Driver) Factory {
	return func(provider string) (Driver, error) {
		d, ok := drivers[provider]
		if !ok {
			return nil, fmt.Errorf("unknown cloud provider %q", provider)
		}
		return d, nil
	}
}
