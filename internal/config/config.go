package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	varPort          = "port"
	varDataDir       = "data_dir"
	varWebDir        = "web_dir"
	varStoreBackend  = "store_backend"
	varLogLevel      = "log_level"
	varDeveloperMode = "developer_mode"
	varJiraURL       = "jira.url"
	varJiraEmail     = "jira.email"
	varJiraAPIToken  = "jira.api_token"
)

type Config struct {
	Addr          string
	DataDir       string
	WebDir        string
	StoreBackend  string
	LogLevel      string
	DeveloperMode bool
	Jira          JiraConfig
}

// JiraConfig holds the credentials used for every upstream call. Missing
// values are not checked here; Jira rejects the request instead.
type JiraConfig struct {
	URL      string
	Email    string
	APIToken string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(varPort, "3000")
	v.SetDefault(varDataDir, ".")
	v.SetDefault(varWebDir, "")
	v.SetDefault(varStoreBackend, "file")
	v.SetDefault(varLogLevel, "")
	v.SetDefault(varDeveloperMode, false)
	v.SetDefault(varJiraURL, "")
	v.SetDefault(varJiraEmail, "")
	v.SetDefault(varJiraAPIToken, "")
}

// Load reads defaults, then the optional YAML file at configFile, then the
// environment (JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN, PORT, DATA_DIR, ...),
// each layer overriding the previous one.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config file %s", configFile)
		}
	}

	port := strings.TrimPrefix(v.GetString(varPort), ":")
	return Config{
		Addr:          ":" + port,
		DataDir:       v.GetString(varDataDir),
		WebDir:        v.GetString(varWebDir),
		StoreBackend:  strings.ToLower(v.GetString(varStoreBackend)),
		LogLevel:      v.GetString(varLogLevel),
		DeveloperMode: v.GetBool(varDeveloperMode),
		Jira: JiraConfig{
			URL:      strings.TrimRight(v.GetString(varJiraURL), "/"),
			Email:    v.GetString(varJiraEmail),
			APIToken: v.GetString(varJiraAPIToken),
		},
	}, nil
}
