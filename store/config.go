package store

// Config holds configuration for the Store.
type Config struct {
	// TablePrefix is prepended to domain names to form table names.
	// Default: "" (domain name is the table name)
	TablePrefix string

	// KeyAttribute is the table's hash key attribute holding the record id.
	// Default: "id"
	KeyAttribute string

	// TTLAttribute is the attribute DynamoDB TTL is enabled on. Items whose
	// TTL has passed are read as absent even before DynamoDB removes them.
	// Default: "ttl"
	TTLAttribute string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		KeyAttribute: "id",
		TTLAttribute: "ttl",
	}
}

// validate fills in defaults for unset values.
func (c *Config) validate() {
	if c.KeyAttribute == "" {
		c.KeyAttribute = "id"
	}
	if c.TTLAttribute == "" {
		c.TTLAttribute = "ttl"
	}
}
