package policy

import (
	"fmt"
	"sync"

	"github.com/localforge/ragcore/internal/core/domain"
	"github.com/localforge/ragcore/internal/logger"
)

// Preference is the configured execution_provider_preference.
type Preference string

const (
	PreferenceAuto Preference = "auto"
	PreferenceCPU  Preference = "cpu"
	PreferenceGPU  Preference = "gpu"
)

// ProviderResult is the resolved execution provider, memoized process-wide.
type ProviderResult struct {
	UsingGPU      bool
	FallbackToCPU bool
}

// ProbeFunc attempts a minimal accelerated-session initialization for the
// given device id and reports whether an accelerator is available. It is
// injected so the probe can be faked in tests without constructing a real
// inference session.
type ProbeFunc func(deviceID int) bool

var (
	probeOnce   sync.Once
	probeResult ProviderResult
	probeErr    error
)

// ResolveExecutionProvider probes for an accelerator exactly once per
// process and memoizes the outcome under a mutex (via sync.Once), writing
// the result back for every subsequent call regardless of arguments.
func ResolveExecutionProvider(pref Preference, deviceID int, probe ProbeFunc) (ProviderResult, error) {
	probeOnce.Do(func() {
		probeResult, probeErr = resolve(pref, deviceID, probe)
	})
	return probeResult, probeErr
}

// ResetForTest clears the memoized probe outcome. Test-only.
func ResetForTest() {
	probeOnce = sync.Once{}
}

func resolve(pref Preference, deviceID int, probe ProbeFunc) (ProviderResult, error) {
	available := probe(deviceID)

	switch pref {
	case PreferenceGPU:
		if !available {
			return ProviderResult{}, fmt.Errorf("%w: gpu preference requested, no accelerator at device %d", domain.ErrAcceleratorUnavailable, deviceID)
		}
		return ProviderResult{UsingGPU: true, FallbackToCPU: false}, nil

	case PreferenceCPU:
		if available {
			logger.Warn("accelerator available at device %d but execution_provider_preference=cpu; using CPU", deviceID)
		}
		return ProviderResult{UsingGPU: false, FallbackToCPU: false}, nil

	default: // auto
		if available {
			return ProviderResult{UsingGPU: true, FallbackToCPU: false}, nil
		}
		return ProviderResult{UsingGPU: false, FallbackToCPU: true}, nil
	}
}
