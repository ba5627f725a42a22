package data

import (
	"database/sql"

	"github.com/pagereply/pagereply/internal/biz/repo"
	"github.com/pagereply/pagereply/messenger"
	"github.com/pagereply/pagereply/providers"
)

// Repositories contains all repositories
type Repositories struct {
	Page      repo.PageRepo
	Rule      repo.RuleRepo
	AIConfig  repo.AIConfigRepo
	History   repo.HistoryRepo
	Event     repo.EventRepo
	SystemLog repo.SystemLogRepo
	Messenger repo.MessengerRepo
	Generator repo.GeneratorRepo
}

// NewRepositories creates all repositories over one database handle
func NewRepositories(db *sql.DB, messengerClient *messenger.Client, providerManager *providers.Manager) *Repositories {
	return &Repositories{
		Page:      NewPageRepo(db),
		Rule:      NewRuleRepo(db),
		AIConfig:  NewAIConfigRepo(db),
		History:   NewHistoryRepo(db),
		Event:     NewEventRepo(db),
		SystemLog: NewSystemLogRepo(db),
		Messenger: NewMessengerRepo(messengerClient),
		Generator: NewGeneratorRepo(providerManager),
	}
}
