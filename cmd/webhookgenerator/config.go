package main

type config struct {
	BaseURL    string `mapstructure:"base_url"`
	Path       string `mapstructure:"path"`
	Secret     string `mapstructure:"secret"`
	Event      string `mapstructure:"event"`
	Repository string `mapstructure:"repository"`
	Sender     string `mapstructure:"sender"`
	Interval   string `mapstructure:"interval"`
}
