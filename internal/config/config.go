package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string   `env:"BASE_URL" envDefault:"http://localhost:8080"`
	CORSOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	Database  Database  `envPrefix:"DB_"`
	Auth      Auth      `envPrefix:"JWT_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	Kafka     Kafka     `envPrefix:"KAFKA_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	Storage   Storage   `envPrefix:"UPLOAD_"`
	Mail      Mail
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	Driver       string `env:"DRIVER" envDefault:"sqlite"` // sqlite, mysql, postgres
	URL          string `env:"URL" envDefault:"shopco.db"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"50"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
}

type Auth struct {
	AccessSecret  string        `env:"SECRET" envDefault:"change-me"`
	RefreshSecret string        `env:"REFRESH_SECRET" envDefault:"change-me-too"`
	AccessTTL     time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL" envDefault:"720h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

func (b Braintree) Enabled() bool {
	return b.MerchantID != "" && b.PublicKey != "" && b.PrivateKey != ""
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Currency     string `env:"CURRENCY" envDefault:"USD"`
}

func (p Paypal) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type Kafka struct {
	Brokers     []string `env:"BROKERS" envSeparator:","`
	TopicPrefix string   `env:"TOPIC_PREFIX" envDefault:"shopco."`
}

type Redis struct {
	Addr       string        `env:"ADDR"`
	Password   string        `env:"PASSWORD"`
	DB         int           `env:"DB" envDefault:"0"`
	ProductTTL time.Duration `env:"PRODUCT_TTL" envDefault:"5m"`
}

type Storage struct {
	Dir       string `env:"DIR" envDefault:"uploads/products"`
	URLPrefix string `env:"URL_PREFIX" envDefault:"/uploads/products"`
	GCSBucket string `env:"GCS_BUCKET"`
	MaxBytes  int64  `env:"MAX_BYTES" envDefault:"5242880"`
}

type Mail struct {
	SendgridAPIKey string `env:"SENDGRID_API_KEY"`
	From           string `env:"MAIL_FROM" envDefault:"no-reply@shopco.local"`
}
