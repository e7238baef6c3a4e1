package competition

// Config is the competition file: the teams taking part and the virtual
// machines whose services get scored.
//
// Example:
//
//	teams:
//	  red:
//	    id: 1
//	    name: Red Team
//	    password: ${RED_PASSWORD}
//	    color: "#ff0000"
//	virtual-machines:
//	  web01:
//	    ip-schema: 10.0.T.10
//	    services:
//	      http: { port: 80, award: 2 }
type Config struct {
	Teams           map[string]Team           `yaml:"teams" validate:"required,min=1,dive"`
	VirtualMachines map[string]VirtualMachine `yaml:"virtual-machines" validate:"required,min=1,dive"`
}

// Team is one competing team. Password doubles as the team's API token.
type Team struct {
	ID       int    `yaml:"id" validate:"gt=0"`
	Name     string `yaml:"name" validate:"required"`
	Password string `yaml:"password" validate:"required"`
	Color    string `yaml:"color,omitempty"`
}

// VirtualMachine is a box every team runs a copy of. Its services are
// either inline or read from Config, a YAML file relative to the
// competition file.
type VirtualMachine struct {
	IPSchema string             `yaml:"ip-schema" validate:"required,ipschema"`
	Services map[string]Service `yaml:"services,omitempty" validate:"required,min=1,dive"`
	Config   string             `yaml:"config,omitempty"`
}

// Service is one scored service on a virtual machine.
type Service struct {
	Port     int  `yaml:"port" validate:"gt=0,lte=65535"`
	Award    int  `yaml:"award,omitempty" validate:"gte=0"`
	Disabled bool `yaml:"disabled,omitempty"`
}
