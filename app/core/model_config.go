package core

// swagger:model
type Configuration struct {
	Database       ConfigurationDatabase       `json:"database" yaml:"database"`
	Server         ConfigurationServer         `json:"server" yaml:"server"`
	MailServer     ConfigurationMailServer     `json:"mail_server" yaml:"mail_server"`
	TextGeneration ConfigurationTextGeneration `json:"text_generation" yaml:"text_generation"`
	Import         ConfigurationImport         `json:"import" yaml:"import"`
	Coaching       ConfigurationCoaching       `json:"coaching" yaml:"coaching"`
	Log            ConfigurationLog            `json:"log" yaml:"log"`
}

// swagger:model
type ConfigurationDatabase struct {
	// Driver is "mysql" or "sqlite".
	Driver        string `json:"driver" yaml:"driver"`
	Host          string `json:"host" yaml:"host"`
	Database      string `json:"database" yaml:"database"`
	User          string `json:"user" yaml:"user"`
	Password      string `json:"password" yaml:"password"`
	Port          int    `json:"port" yaml:"port"`
	Path          string `json:"path" yaml:"path"`
	DoAutoMigrate bool   `json:"do_auto_migrate" yaml:"do_auto_migrate"`
	Debug         bool   `json:"debug" yaml:"debug"`
}

// swagger:model
type ConfigurationServer struct {
	Hostname        string `json:"hostname" yaml:"hostname"`
	InternalPort    int    `json:"internal_port" yaml:"internal_port"`
	WithSSL         bool   `json:"with_ssl" yaml:"with_ssl"`
	SSLCertFile     string `json:"ssl_cert_file" yaml:"ssl_cert_file"`
	SSLKeyFile      string `json:"ssl_key_file" yaml:"ssl_key_file"`
	UploadFilepath  string `json:"upload_filepath" yaml:"upload_filepath"`
	TmpPath         string `json:"tmp_path" yaml:"tmp_path"`
	DeliverFrontEnd bool   `json:"deliver_front_end" yaml:"deliver_front_end"`
	FrontEndPath    string `json:"front_end_path" yaml:"front_end_path"`
	SessionDays     int    `json:"session_days" yaml:"session_days"`
	CookieSecure    bool   `json:"cookie_secure" yaml:"cookie_secure"`
	MaxUploadMB     int64  `json:"max_upload_mb" yaml:"max_upload_mb"`
}

// swagger:model
type ConfigurationMailServer struct {
	SmtpHost           string `json:"smtp_host" yaml:"smtp_host"`
	SmtpPort           int    `json:"smtp_port" yaml:"smtp_port"`
	SmtpUsername       string `json:"smtp_username" yaml:"smtp_username"`
	SmtpPassword       string `json:"smtp_password" yaml:"smtp_password"`
	From               string `json:"from" yaml:"from"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

type ConfigurationTextGeneration struct {
	Provider         string `json:"provider" yaml:"provider"`
	BaseURL          string `json:"base_url" yaml:"base_url"`
	Model            string `json:"model" yaml:"model"`
	APIKey           string `json:"api_key" yaml:"api_key"`
	MappingMaxTokens int    `json:"mapping_max_tokens" yaml:"mapping_max_tokens"`
	MessageMaxTokens int    `json:"message_max_tokens" yaml:"message_max_tokens"`
	TimeoutSeconds   int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

type ConfigurationImport struct {
	// Mapper is "auto", "llm" or "rules". auto uses the LLM when an API key is set.
	Mapper               string `json:"mapper" yaml:"mapper"`
	SessionTTLMinutes    int    `json:"session_ttl_minutes" yaml:"session_ttl_minutes"`
	SweepIntervalSeconds int    `json:"sweep_interval_seconds" yaml:"sweep_interval_seconds"`
}

type ConfigurationCoaching struct {
	AtRiskThresholdDays int `json:"at_risk_threshold_days" yaml:"at_risk_threshold_days"`
}

type ConfigurationLog struct {
	Level string `json:"level" yaml:"level"`
}
