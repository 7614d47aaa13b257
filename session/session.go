package session

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lmontes/melgen/constants"
)

// Session is a YAML document describing one full generation run: the corpus,
// the chain parameters and the output. Flags on the compose command override
// nothing here; a session file is the whole configuration.
type Session struct {
	Sources     []string `yaml:"sources"`
	Voices      []string `yaml:"voices"`
	Order       int      `yaml:"order"`
	Steps       int      `yaml:"steps"`
	Seed        *int64   `yaml:"seed"`
	Tempo       int      `yaml:"tempo"` // 0 = use the first score's tempo
	Velocity    int      `yaml:"velocity"`
	Instruments []string `yaml:"instruments"`
	Output      string   `yaml:"output"`
	// TablePath persists the built transition table; when LoadTable is set
	// the table is read from there instead of being rebuilt.
	TablePath string `yaml:"table"`
	LoadTable bool   `yaml:"load_table"`
	Preview   bool   `yaml:"preview"`
}

// Default returns a session with the defaults the compose command uses when
// no session file is given.
func Default() *Session {
	return &Session{
		Voices:   []string{"1"},
		Order:    1,
		Steps:    50,
		Velocity: constants.DefaultVelocity,
		Output:   filepath.Join(constants.GetOutDir(), "composition.mid"),
	}
}

// Load reads a session document and fills unset fields with defaults.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session file %v: %w", path, err)
	}
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing session file %v: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("session file %v: %w", path, err)
	}
	return s, nil
}

// Validate rejects sessions that cannot drive a run.
func (s *Session) Validate() error {
	if len(s.Sources) == 0 && !s.LoadTable {
		return fmt.Errorf("needs at least one source score or a table to load")
	}
	if s.LoadTable && s.TablePath == "" {
		return fmt.Errorf("load_table is set but no table path is given")
	}
	if len(s.Voices) == 0 {
		return fmt.Errorf("voice selection is empty")
	}
	if s.Order < 1 {
		return fmt.Errorf("order (%v) must be positive", s.Order)
	}
	if s.Steps < 0 {
		return fmt.Errorf("steps (%v) must not be negative", s.Steps)
	}
	if s.Velocity < 0 || s.Velocity > 127 {
		return fmt.Errorf("velocity (%v) must be in 0..127", s.Velocity)
	}
	return nil
}
