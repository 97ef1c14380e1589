package profile

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultProfileID is substituted whenever a caller names a profile the
// store does not know.
const DefaultProfileID = "balanced"

func builtinProfiles() []*Profile {
	return []*Profile{
		{
			ID:                    "balanced",
			Name:                  "Balanced",
			Level:                 LevelMedium,
			MaintainCompatibility: true,
			UpdateFrequency:       5 * time.Minute,
			SuccessRate:           0.95,
			DetectionResistance:   0.7,
		},
		{
			ID:                    "compatibility",
			Name:                  "Compatibility",
			Level:                 LevelLow,
			MaintainCompatibility: true,
			UpdateFrequency:       10 * time.Minute,
			Constraints: Constraints{
				MinCipherSuites: 4,
				MaxCipherSuites: 10,
				MaxExtensions:   10,
			},
			SuccessRate:         0.99,
			DetectionResistance: 0.4,
		},
		{
			ID:                    "browser_mimic",
			Name:                  "Browser Mimic",
			Level:                 LevelHigh,
			MaintainCompatibility: true,
			TargetApplications:    []string{"chrome", "firefox", "safari", "edge"},
			UpdateFrequency:       15 * time.Minute,
			Constraints: Constraints{
				BrowserTemplate: true,
				MimicAccuracy:   0.9,
			},
			SuccessRate:         0.97,
			DetectionResistance: 0.85,
		},
		{
			ID:              "maximum_entropy",
			Name:            "Maximum Entropy",
			Level:           LevelExtreme,
			UpdateFrequency: time.Minute,
			Constraints: Constraints{
				MinCipherSuites: 4,
				MaxCipherSuites: 12,
			},
			SuccessRate:         0.85,
			DetectionResistance: 0.95,
		},
	}
}

// Store holds built-in and custom profiles plus the rotation config.
// Register is the only mutation entry point for profiles and either fully
// succeeds or leaves the store untouched.
type Store struct {
	mu        sync.RWMutex
	profiles  map[string]*Profile
	defaultID string
	rotation  RotationConfig
}

func NewStore() *Store {
	s := &Store{
		profiles:  make(map[string]*Profile),
		defaultID: DefaultProfileID,
		rotation:  DefaultRotationConfig(),
	}
	for _, p := range builtinProfiles() {
		s.profiles[p.ID] = p
	}
	return s
}

// Get returns the profile for id, or (nil, false). The returned profile
// must be treated as read-only.
func (s *Store) Get(id string) (*Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	return p, ok
}

// Resolve returns the profile for id, falling back to the default when id
// is empty or unknown. substituted is true when the fallback was used for
// a non-empty id.
func (s *Store) Resolve(id string) (p *Profile, substituted bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == "" {
		return s.profiles[s.defaultID], false
	}
	if p, ok := s.profiles[id]; ok {
		return p, false
	}
	return s.profiles[s.defaultID], true
}

func (s *Store) Default() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[s.defaultID]
}

func (s *Store) SetDefault(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return false
	}
	s.defaultID = id
	return true
}

// Register validates and installs a custom profile. A profile with an
// already-registered id is rejected rather than replaced.
func (s *Store) Register(p *Profile) error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", ErrInvalidProfile)
	}
	if err := p.validate(); err != nil {
		return err
	}
	cp := *p
	if cp.Name == "" {
		cp.Name = cp.ID
	}
	if cp.UpdateFrequency == 0 {
		cp.UpdateFrequency = DefaultUpdateFrequency
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[cp.ID]; exists {
		return fmt.Errorf("%w: id %q already registered", ErrInvalidProfile, cp.ID)
	}
	s.profiles[cp.ID] = &cp
	return nil
}

// IDs lists registered profile ids, sorted.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

func (s *Store) Rotation() RotationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rotation
}

func (s *Store) SetRotation(cfg RotationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation = cfg
}
