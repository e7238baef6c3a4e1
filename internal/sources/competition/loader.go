package competition

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader reads and validates a competition file.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for the competition file at filePath.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Load reads the competition file, expands ${VAR} references from the
// environment, resolves per-VM service files and validates the result.
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read competition file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnv(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse competition yaml: %w", err)
	}

	dir := filepath.Dir(l.filePath)
	for name, vm := range cfg.VirtualMachines {
		if len(vm.Services) > 0 || vm.Config == "" {
			continue
		}
		services, err := loadServices(filepath.Join(dir, vm.Config))
		if err != nil {
			return nil, fmt.Errorf("virtual machine %s: %w", name, err)
		}
		vm.Services = services
		cfg.VirtualMachines[name] = vm
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadServices(path string) (map[string]Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read services file: %w", err)
	}
	var services map[string]Service
	if err := yaml.Unmarshal(expandEnv(data), &services); err != nil {
		return nil, fmt.Errorf("failed to parse services file %s: %w", path, err)
	}
	return services, nil
}

// expandEnv replaces ${VAR} and $VAR with environment values so secrets
// can stay out of the file. Unset variables expand to "".
func expandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
