package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"ShopDeskBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	OpenAI struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		ApiKey  string `yaml:"api_key" env-default:""`
		Model   string `yaml:"model" env-default:"gpt-4o-mini"`
	} `yaml:"openai"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:""`
	} `yaml:"mongo"`
	Chat struct {
		// Quiet period in milliseconds before an idle typist auto-reverts to "not typing".
		TypingQuietMs int `yaml:"typing_quiet_ms" env-default:"3000"`
		AutoReply     struct {
			Enabled                 bool   `yaml:"enabled" env-default:"true"`
			Message                 string `yaml:"message" env-default:"All our agents are offline right now. We will get back to you as soon as possible."`
			DelaySeconds            int    `yaml:"delay_seconds" env-default:"60"`
			SuppressAfterAgentReply bool   `yaml:"suppress_after_agent_reply" env-default:"false"`
		} `yaml:"auto_reply"`
	} `yaml:"chat"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9200"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
