package competition

import (
	"sort"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// Plan is what provisioning applies to the store.
type Plan struct {
	Teams []domain.Team
	// Services carry no id; the store assigns it by name.
	Services []domain.Service
	// Credentials maps a team password to its team id.
	Credentials map[string]int
}

// ServiceName is the catalog name of service svc on box: "<box>_<svc>".
func ServiceName(box, svc string) string {
	return box + "_" + svc
}

// Map converts a validated config into a provisioning plan. Teams are
// ordered by id and services by name.
func Map(cfg *Config) Plan {
	plan := Plan{
		Teams:       make([]domain.Team, 0, len(cfg.Teams)),
		Credentials: make(map[string]int, len(cfg.Teams)),
	}

	for _, t := range cfg.Teams {
		plan.Teams = append(plan.Teams, domain.Team{ID: t.ID, Name: t.Name, Color: t.Color})
		plan.Credentials[t.Password] = t.ID
	}
	sort.Slice(plan.Teams, func(i, j int) bool { return plan.Teams[i].ID < plan.Teams[j].ID })

	for box, vm := range cfg.VirtualMachines {
		for name, svc := range vm.Services {
			award := svc.Award
			if award == 0 {
				award = 1
			}
			plan.Services = append(plan.Services, domain.Service{
				Name:     ServiceName(box, name),
				Box:      box,
				Port:     svc.Port,
				Award:    award,
				Disabled: svc.Disabled,
			})
		}
	}
	sort.Slice(plan.Services, func(i, j int) bool { return plan.Services[i].Name < plan.Services[j].Name })

	return plan
}
