package config

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DatabaseMode has the following constants: DatabaseModePostgres
type DatabaseMode string

const (
	DatabaseModePostgres DatabaseMode = "postgres"
)

// CacheMode has the following constants: CacheModeMemory, CacheModeRedis
type CacheMode string

const (
	CacheModeMemory CacheMode = "memory"
	CacheModeRedis  CacheMode = "redis"
)

// QueueMode has the following constants: QueueModeNoop, QueueModeInProcess
type QueueMode string

const (
	QueueModeNoop      QueueMode = "noop"
	QueueModeInProcess QueueMode = "inprocess"
)

// LeaderElectionMode has the following constants: LeaderElectionModeNone, LeaderElectionModeRaft
type LeaderElectionMode string

const (
	LeaderElectionModeNone LeaderElectionMode = "none"
	LeaderElectionModeRaft LeaderElectionMode = "raft"
)

type ServerConfig struct {
	ExternalUrl    string
	Host           string
	Port           int
	AllowedOrigins []string
	// TokenSecret signs the short-lived registration tokens that bind
	// a begin-registration call to its completion.
	TokenSecret string
}

type RelyingPartyConfig struct {
	// Id is the relying party identifier credentials are scoped to,
	// usually the serving origin's host.
	Id          string
	DisplayName string
	// Origins is the allow-list matched against the origin reported in
	// clientDataJSON. Anything not listed here fails verification.
	Origins                []string
	CeremonyTimeoutSeconds int
	MaxCredentialsPerUser  int
}

type PostgresConfig struct {
	Database string
	Host     string
	Port     int
	Username string
	Password string
	SslMode  string
}

type RaftNodeConfig struct {
	Id      string
	Address string
}

type LeaderElectionConfig struct {
	Mode LeaderElectionMode
	Raft struct {
		Id          string
		Host        string
		Port        int
		InitiatorId string
		Nodes       []RaftNodeConfig
	}
}

type Config struct {
	Server       ServerConfig
	RelyingParty RelyingPartyConfig
	Database     struct {
		Mode     DatabaseMode
		Postgres PostgresConfig
	}
	Cache struct {
		Mode  CacheMode
		Redis struct {
			Host     string
			Port     int
			Username string
			Password string
			Database int
		}
	}
	Queue struct {
		Mode QueueMode
	}
	Mail struct {
		Host     string
		Port     int
		Username string
		Password string
	}
	Alerts struct {
		// SecurityEmail receives counter-regression alerts. Empty disables
		// alert mails, the events are still logged.
		SecurityEmail string
	}
	LeaderElection LeaderElectionConfig
}

var configFilePath string
var environment string
var C Config

func IsProduction() bool {
	return environment == "PRODUCTION"
}

func Init() {
	readFlags()
	readConfigFile()
}

var k = koanf.New(".")

func readConfigFile() {
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			log.Fatalf("error loading config from file: %v", err)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: "SIGIL_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "SIGIL_")), "_", ".")

			if strings.Contains(v, " ") {
				return k, strings.Split(v, " ")
			}

			return k, v
		},
	}), nil)
	if err != nil {
		log.Fatalf("error loading config from env: %v", err)
	}

	err = k.Unmarshal("", &C)
	if err != nil {
		log.Fatalf("error unmarshalling config: %v", err)
	}

	setDefaultsOrPanic()
}

func setDefaultsOrPanic() {
	setServerDefaultsOrPanic()
	setRelyingPartyDefaultsOrPanic()
	setDatabaseDefaultsOrPanic()
	setCacheDefaultsOrPanic()
	setQueueDefaultsOrPanic()
	setLeaderElectionDefaultsOrPanic()
}

func setQueueDefaultsOrPanic() {
	switch C.Queue.Mode {
	case "":
		C.Queue.Mode = QueueModeInProcess

	case QueueModeNoop, QueueModeInProcess:
		// nothing to do

	default:
		panic("queue mode missing or not supported")
	}
}

func setServerDefaultsOrPanic() {
	if C.Server.Host == "" {
		if IsProduction() {
			panic("missing server hostname in config")
		}

		C.Server.Host = "localhost"
	}

	if C.Server.Port == 0 {
		C.Server.Port = 8080
	}

	if C.Server.ExternalUrl == "" {
		if IsProduction() {
			panic("missing external url")
		}

		C.Server.ExternalUrl = fmt.Sprintf("http://%s:%d", C.Server.Host, C.Server.Port)
	}

	if len(C.Server.AllowedOrigins) == 0 {
		if IsProduction() {
			panic("missing allowed origins")
		}

		C.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}

	if C.Server.TokenSecret == "" {
		if IsProduction() {
			panic("missing server token secret")
		}

		C.Server.TokenSecret = "sigil-development-token-secret"
	}
}

func setRelyingPartyDefaultsOrPanic() {
	if C.RelyingParty.Id == "" {
		if IsProduction() {
			panic("missing relying party id")
		}

		C.RelyingParty.Id = "localhost"
	}

	if C.RelyingParty.DisplayName == "" {
		C.RelyingParty.DisplayName = "Sigil"
	}

	if len(C.RelyingParty.Origins) == 0 {
		if IsProduction() {
			panic("missing relying party origins")
		}

		C.RelyingParty.Origins = []string{"http://localhost:5173"}
	}

	if C.RelyingParty.CeremonyTimeoutSeconds == 0 {
		C.RelyingParty.CeremonyTimeoutSeconds = 60
	}

	if C.RelyingParty.MaxCredentialsPerUser == 0 {
		C.RelyingParty.MaxCredentialsPerUser = 10
	}
}

func setDatabaseDefaultsOrPanic() {
	switch C.Database.Mode {
	case DatabaseModePostgres:
		setPostgresDefaultsOrPanic()

	default:
		panic("database mode missing or not supported")
	}
}

func setPostgresDefaultsOrPanic() {
	if C.Database.Postgres.Database == "" {
		C.Database.Postgres.Database = "sigil"
	}

	if C.Database.Postgres.Username == "" {
		panic("missing postgres username")
	}

	if C.Database.Postgres.Port == 0 {
		C.Database.Postgres.Port = 5432
	}

	if C.Database.Postgres.Host == "" {
		panic("missing postgres host")
	}

	if C.Database.Postgres.SslMode == "" {
		C.Database.Postgres.SslMode = "enable"
	}

	if C.Database.Postgres.Password == "" {
		panic("missing postgres password")
	}
}

func setCacheDefaultsOrPanic() {
	switch C.Cache.Mode {
	case CacheModeMemory:
		// nothing to do

	case CacheModeRedis:
		setRedisDefaultsOrPanic()

	default:
		panic("cache mode missing or not supported")
	}
}

func setRedisDefaultsOrPanic() {
	if C.Cache.Redis.Host == "" {
		if IsProduction() {
			panic("missing redis host")
		}

		C.Cache.Redis.Host = "localhost"
	}

	if C.Cache.Redis.Port == 0 {
		C.Cache.Redis.Port = 6379
	}
}

func setLeaderElectionDefaultsOrPanic() {
	switch C.LeaderElection.Mode {
	case "":
		C.LeaderElection.Mode = LeaderElectionModeNone

	case LeaderElectionModeNone:
		// nothing to do

	case LeaderElectionModeRaft:
		if C.LeaderElection.Raft.Id == "" {
			panic("missing raft node id")
		}
		if C.LeaderElection.Raft.Host == "" {
			panic("missing raft host")
		}
		if C.LeaderElection.Raft.Port == 0 {
			panic("missing raft port")
		}

	default:
		panic("leader election mode not supported")
	}
}

func readFlags() {
	flag.StringVar(&configFilePath, "config", "", "The path for the config file.")
	flag.StringVar(&environment, "environment", "PRODUCTION", "The environment that this application is running in (can be PRODUCTION or DEVELOPMENT).")
	flag.Parse()
}
