package config

// Overrides replaces individual fields of a launch configuration for a
// single run. Nil fields keep the configured value.
type Overrides struct {
	Port     *int
	Connect  *string
	Nickname *string
}

// Apply returns c with o applied. c itself is left untouched.
func (o Overrides) Apply(c LaunchConfig) LaunchConfig {
	if o.Port != nil {
		c.Port = *o.Port
	}
	if o.Connect != nil {
		c.Connect = *o.Connect
	}
	if o.Nickname != nil {
		c.Nickname = *o.Nickname
	}
	return c
}
