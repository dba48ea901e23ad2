package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
	"github.com/xavierca1/ligue-campaigns/internal/infra/integration/backend"
)

var errNotAuthenticated = &DomainError{
	Code:    CodeNotAuthenticated,
	Message: "sessão expirada ou inexistente, faça login novamente",
}

// Session is the process-wide auth state. It is created once in main and
// passed to whoever needs it; it also serves as the backend client's
// TokenSource.
type Session struct {
	tokens  entity.TokenRepository
	gateway AuthGateway
	logger  *zap.Logger

	mu      sync.RWMutex
	token   string
	profile *entity.User
}

func NewSession(tokens entity.TokenRepository, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{tokens: tokens, logger: logger}
}

// WithGateway liga a sessão ao cliente do backend. O cliente precisa da sessão
// como TokenSource, por isso a ligação é feita depois da construção.
func (s *Session) WithGateway(gw AuthGateway) *Session {
	s.gateway = gw
	return s
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Profile() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.profile != nil
}

// Init lê o token salvo e busca o perfil. Um token recusado pelo backend (401)
// é apagado; outras falhas mantêm o token para a próxima tentativa.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.tokens.Load(ctx)
	if errors.Is(err, entity.ErrTokenNotFound) {
		return errNotAuthenticated
	}
	if err != nil {
		return &TechnicalError{Code: CodeStorageError, Message: "erro ao ler sessão salva", Err: err}
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	user, err := s.gateway.Me(ctx)
	if err != nil {
		if backend.IsUnauthorized(err) {
			s.logger.Info("🔒 token salvo foi recusado, limpando sessão")
			if err := s.clear(ctx); err != nil {
				s.logger.Warn("⚠️ não foi possível apagar o token recusado", zap.Error(err))
			}
			return errNotAuthenticated
		}
		return &TechnicalError{Code: CodeBackendError, Message: "erro ao buscar perfil", Err: err}
	}

	s.mu.Lock()
	s.profile = user
	s.mu.Unlock()

	s.logger.Debug("👤 sessão restaurada", zap.String("user_id", user.ID))
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &DomainError{Code: CodeInvalidInput, Message: "email e senha são obrigatórios"}
	}

	out, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		if backend.IsUnauthorized(err) {
			return nil, &DomainError{Code: CodeNotAuthenticated, Message: "email ou senha inválidos"}
		}
		return nil, &TechnicalError{Code: CodeBackendError, Message: "erro ao autenticar", Err: err}
	}

	if err := s.tokens.Store(ctx, out.Token); err != nil {
		return nil, &TechnicalError{Code: CodeStorageError, Message: "erro ao salvar sessão", Err: err}
	}

	user := out.User
	s.mu.Lock()
	s.token = out.Token
	s.profile = &user
	s.mu.Unlock()

	s.logger.Info("✅ login realizado", zap.String("user_id", user.ID))
	return &user, nil
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.clear(ctx); err != nil {
		return &TechnicalError{Code: CodeStorageError, Message: "erro ao apagar sessão", Err: err}
	}
	s.logger.Info("👋 sessão encerrada")
	return nil
}

func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.profile = nil
	s.mu.Unlock()
	return s.tokens.Clear(ctx)
}
