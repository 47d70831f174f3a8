package license

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// ExpiredKey is reported as the license key once a license has lapsed.
const ExpiredKey = "EXPIRED"

// ServiceInformation describes the validator service and its license.
// Fields map 1:1 to the license YAML file.
type ServiceInformation struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	License *License `yaml:"license"`
}

// License carries the key issued to this deployment.
type License struct {
	LicenseKey string    `yaml:"license_key"`
	ExpiresAt  time.Time `yaml:"expires_at"`
}

// Key returns the license key, or ExpiredKey when the license has lapsed at now.
// A nil license has no key.
func (l *License) Key(now time.Time) string {
	if l == nil {
		return ""
	}
	if !l.ExpiresAt.IsZero() && !now.Before(l.ExpiresAt) {
		return ExpiredKey
	}
	return l.LicenseKey
}

// Parse decodes service information from YAML.
func Parse(data []byte) (*ServiceInformation, error) {
	var info ServiceInformation
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse license: %w", err)
	}
	if info.License != nil {
		info.License.LicenseKey = strings.TrimSpace(info.License.LicenseKey)
	}
	return &info, nil
}

// Load reads and parses the license file at path.
func Load(path string) (*ServiceInformation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read license file: %w", err)
	}
	return Parse(data)
}

// Holder keeps the current service information and swaps it atomically on reload.
type Holder struct {
	current atomic.Pointer[ServiceInformation]
}

// NewHolder returns a holder seeded with info, which may be nil.
func NewHolder(info *ServiceInformation) *Holder {
	h := &Holder{}
	h.Store(info)
	return h
}

// ServiceInformation returns the current value; nil when nothing was loaded.
func (h *Holder) ServiceInformation() *ServiceInformation {
	return h.current.Load()
}

func (h *Holder) Store(info *ServiceInformation) {
	h.current.Store(info)
}
