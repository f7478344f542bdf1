package storage

// Config selects and configures the artifact backend.
type Config struct {
	// Backend is "file" or "minio".
	Backend string `mapstructure:"backend" default:"file"`
	// Dir is the directory used by the file backend.
	Dir string `mapstructure:"dir" default:"cache"`
	// Endpoint is the host:port of the object storage service.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	Bucket    string `mapstructure:"bucket" default:"country-summary"`
	Region    string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds connection setup and first response byte.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

const (
	BackendFile  = "file"
	BackendMinio = "minio"
)
