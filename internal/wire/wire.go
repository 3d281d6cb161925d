// Package wire provides dependency injection for the RCFA application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/example/rcfa/internal/adapters/anthropic"
	cliadapter "github.com/example/rcfa/internal/adapters/cli"
	"github.com/example/rcfa/internal/adapters/sqlite"
	"github.com/example/rcfa/internal/app"
	"github.com/example/rcfa/internal/config"
	"github.com/example/rcfa/internal/db"
	"github.com/example/rcfa/internal/ports/primary"
)

var (
	caseService      primary.CaseService
	analysisService  primary.AnalysisService
	candidateService primary.CandidateService
	itemService      primary.ActionItemService
	questionService  primary.QuestionService
	userService      primary.UserService
	auditService     primary.AuditService
	once             sync.Once

	// The analysis service needs a model client, which needs an API key.
	// It is initialized separately so every other command works without one.
	analysisOnce sync.Once
)

// CaseService returns the singleton CaseService instance.
func CaseService() primary.CaseService {
	once.Do(initServices)
	return caseService
}

// AnalysisService returns the singleton AnalysisService instance.
func AnalysisService() primary.AnalysisService {
	once.Do(initServices)
	analysisOnce.Do(initAnalysisService)
	return analysisService
}

// CandidateService returns the singleton CandidateService instance.
func CandidateService() primary.CandidateService {
	once.Do(initServices)
	return candidateService
}

// ActionItemService returns the singleton ActionItemService instance.
func ActionItemService() primary.ActionItemService {
	once.Do(initServices)
	return itemService
}

// QuestionService returns the singleton QuestionService instance.
func QuestionService() primary.QuestionService {
	once.Do(initServices)
	return questionService
}

// UserService returns the singleton UserService instance.
func UserService() primary.UserService {
	once.Do(initServices)
	return userService
}

// AuditService returns the singleton AuditService instance.
func AuditService() primary.AuditService {
	once.Do(initServices)
	return auditService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) over the shared connection
	caseRepo := sqlite.NewCaseRepository(database)
	questionRepo := sqlite.NewQuestionRepository(database)
	candidateRepo := sqlite.NewCandidateRepository(database)
	finalRepo := sqlite.NewFinalRepository(database)
	itemRepo := sqlite.NewActionItemRepository(database)
	userRepo := sqlite.NewUserRepository(database)
	auditRepo := sqlite.NewAuditRepository(database)
	coord := sqlite.NewCaseCoordinator(database)

	// Services (primary ports implementation)
	caseService = app.NewCaseService(caseRepo, coord)
	candidateService = app.NewCandidateService(caseRepo, candidateRepo, finalRepo, coord)
	itemService = app.NewActionItemService(caseRepo, itemRepo, userRepo, coord)
	questionService = app.NewQuestionService(caseRepo, questionRepo, coord)
	userService = app.NewUserService(userRepo)
	auditService = app.NewAuditService(caseRepo, auditRepo)
}

// initAnalysisService wires the analysis engine against the Anthropic API.
// Fails fast when no API key is available rather than erroring mid-analysis.
func initAnalysisService() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	model := ""
	dir, err := db.Dir()
	if err == nil {
		if cfg, cfgErr := config.Load(dir); cfgErr == nil {
			model = cfg.Model
		}
	}

	client, err := anthropic.NewClient("", model)
	if err != nil {
		log.Fatalf("failed to initialize model client: %v", err)
	}

	analysisService = app.NewAnalysisService(
		sqlite.NewCaseRepository(database),
		sqlite.NewQuestionRepository(database),
		sqlite.NewCandidateRepository(database),
		sqlite.NewAuditRepository(database),
		sqlite.NewCaseCoordinator(database),
		client,
	)
}

// CaseAdapter returns a new CaseAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func CaseAdapter() *cliadapter.CaseAdapter {
	return CaseAdapterWithOutput(os.Stdout)
}

// CaseAdapterWithOutput returns a new CaseAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func CaseAdapterWithOutput(out io.Writer) *cliadapter.CaseAdapter {
	once.Do(initServices)
	return cliadapter.NewCaseAdapter(caseService, out)
}

// AnalysisAdapter returns a new AnalysisAdapter writing to stdout.
func AnalysisAdapter() *cliadapter.AnalysisAdapter {
	return AnalysisAdapterWithOutput(os.Stdout)
}

// AnalysisAdapterWithOutput returns a new AnalysisAdapter writing to the given output.
func AnalysisAdapterWithOutput(out io.Writer) *cliadapter.AnalysisAdapter {
	once.Do(initServices)
	analysisOnce.Do(initAnalysisService)
	return cliadapter.NewAnalysisAdapter(analysisService, out)
}

// CandidateAdapter returns a new CandidateAdapter writing to stdout.
func CandidateAdapter() *cliadapter.CandidateAdapter {
	return CandidateAdapterWithOutput(os.Stdout)
}

// CandidateAdapterWithOutput returns a new CandidateAdapter writing to the given output.
func CandidateAdapterWithOutput(out io.Writer) *cliadapter.CandidateAdapter {
	once.Do(initServices)
	return cliadapter.NewCandidateAdapter(candidateService, out)
}

// ItemAdapter returns a new ItemAdapter writing to stdout.
func ItemAdapter() *cliadapter.ItemAdapter {
	return ItemAdapterWithOutput(os.Stdout)
}

// ItemAdapterWithOutput returns a new ItemAdapter writing to the given output.
func ItemAdapterWithOutput(out io.Writer) *cliadapter.ItemAdapter {
	once.Do(initServices)
	return cliadapter.NewItemAdapter(itemService, out)
}

// QuestionAdapter returns a new QuestionAdapter writing to stdout.
func QuestionAdapter() *cliadapter.QuestionAdapter {
	return QuestionAdapterWithOutput(os.Stdout)
}

// QuestionAdapterWithOutput returns a new QuestionAdapter writing to the given output.
func QuestionAdapterWithOutput(out io.Writer) *cliadapter.QuestionAdapter {
	once.Do(initServices)
	return cliadapter.NewQuestionAdapter(questionService, out)
}

// UserAdapter returns a new UserAdapter writing to stdout.
func UserAdapter() *cliadapter.UserAdapter {
	return UserAdapterWithOutput(os.Stdout)
}

// UserAdapterWithOutput returns a new UserAdapter writing to the given output.
func UserAdapterWithOutput(out io.Writer) *cliadapter.UserAdapter {
	once.Do(initServices)
	return cliadapter.NewUserAdapter(userService, out)
}

// AuditAdapter returns a new AuditAdapter writing to stdout.
func AuditAdapter() *cliadapter.AuditAdapter {
	return AuditAdapterWithOutput(os.Stdout)
}

// AuditAdapterWithOutput returns a new AuditAdapter writing to the given output.
func AuditAdapterWithOutput(out io.Writer) *cliadapter.AuditAdapter {
	once.Do(initServices)
	return cliadapter.NewAuditAdapter(auditService, out)
}
