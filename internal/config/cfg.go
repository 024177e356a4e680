package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Host        string `envconfig:"BILLPING_SERVER_HOST" default:"localhost"`
	HTTPPort    string `envconfig:"BILLPING_SERVER_PORT" default:"8080"`
	ReadTimeout int    `envconfig:"BILLPING_SERVER_TIMEOUT" default:"10"`
}

type Db struct {
	Dialect        string `envconfig:"DB_DIALECT" default:"sqlite"`
	Source         string `envconfig:"DB_NAME" default:"billping.db"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_DIR" default:"./migrations"`
}

type Email struct {
	APIKey  string `envconfig:"RESEND_API_KEY"`
	BaseURL string `envconfig:"RESEND_BASE_URL" default:"https://api.resend.com"`
	From    string `envconfig:"EMAIL_FROM" default:"BillPing <onboarding@resend.dev>"`
	// OverrideTo redirects every reminder to a single address when set.
	// The upstream deployment shipped with a maintainer address here;
	// production must leave it empty so owners get their own reminders.
	OverrideTo string `envconfig:"EMAIL_OVERRIDE_TO"`
}

type Push struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	Subject         string `envconfig:"VAPID_SUBJECT" default:"mailto:support@billping.app"`
	TTL             int    `envconfig:"PUSH_TTL" default:"30"`
}

type Category struct {
	GroqAPIKey  string `envconfig:"GROQ_API_KEY"`
	BaseURL     string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	Model       string `envconfig:"GROQ_MODEL" default:"llama-3.1-8b-instant"`
	CacheTTLMin int    `envconfig:"CATEGORY_CACHE_TTL_MINUTES" default:"1440"`
}

type Redis struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
}

type Reminders struct {
	// Six-field cron spec (with seconds), defaults to 09:00 daily.
	Schedule   string `envconfig:"REMINDER_SCHEDULE" default:"0 0 9 * * *"`
	CronSecret string `envconfig:"CRON_SECRET"`
}

type Config struct {
	SiteURL      string `envconfig:"SITE_URL" default:"http://localhost:3000"`
	TemplatesDir string `envconfig:"TEMPLATES_DIR" default:"./internal/templates"`
	LogsPath     string `envconfig:"LOGS_PATH" default:"logs/billping.log"`

	Server    Server
	DB        Db
	Email     Email
	Push      Push
	Category  Category
	Redis     Redis
	Reminders Reminders
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.HTTPPort
}
