package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
)

// ImportMappingEditor holds the local column-to-field mapping of one CSV
// import. Edits are never rejected; nothing reaches the backend until Save.
type ImportMappingEditor struct {
	importID string
	gateway  ImportGateway
	drafts   entity.MappingDraftRepository
	notifier Notifier
	logger   *zap.Logger

	mu       sync.Mutex
	fileName string
	columns  []string
	mapping  entity.ImportMapping
	dirty    bool
}

func NewImportMappingEditor(
	importID string,
	gateway ImportGateway,
	drafts entity.MappingDraftRepository,
	notifier Notifier,
	logger *zap.Logger,
) *ImportMappingEditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportMappingEditor{
		importID: importID,
		gateway:  gateway,
		drafts:   drafts,
		notifier: notifier,
		logger:   logger.With(zap.String("import_id", importID)),
		mapping:  entity.NewImportMapping(),
	}
}

// Load busca as colunas do CSV e o mapeamento salvo. Um rascunho local, se
// existir, tem prioridade sobre o que está no backend.
func (e *ImportMappingEditor) Load(ctx context.Context) error {
	imp, err := e.gateway.GetImport(ctx, e.importID)
	if err != nil {
		if errors.Is(err, entity.ErrImportNotFound) {
			return &DomainError{Code: CodeInvalidInput, Message: err.Error()}
		}
		return &TechnicalError{Code: CodeBackendError, Message: "erro ao carregar importação", Err: err}
	}

	mapping := imp.FieldMapping.Normalize()
	dirty := false
	if e.drafts != nil {
		draft, err := e.drafts.Find(ctx, e.importID)
		switch {
		case err == nil:
			e.logger.Info("📝 rascunho local encontrado, usando-o no lugar do mapeamento salvo")
			mapping = draft.Normalize()
			dirty = true
		case errors.Is(err, entity.ErrDraftNotFound):
		default:
			e.logger.Warn("⚠️ erro ao ler rascunho local", zap.Error(err))
		}
	}

	e.mu.Lock()
	e.fileName = imp.FileName
	e.columns = slices.Clone(imp.Columns)
	e.mapping = mapping
	e.dirty = dirty
	e.mu.Unlock()
	return nil
}

// Bind renders every CSV column as a draggable token and makes every
// destination field a drop target that calls AddSource.
func (e *ImportMappingEditor) Bind(dd DragDrop) {
	for _, col := range e.Columns() {
		dd.EmitDraggable(ColumnToken{Column: col})
	}
	for _, field := range entity.DestinationFields {
		dd.AcceptDrop(field, func(token ColumnToken) {
			e.AddSource(field, token.Column)
		})
	}
}

func (e *ImportMappingEditor) AddSource(field, column string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := e.mapping.AddSource(field, column)
	e.dirty = e.dirty || changed
	return changed
}

func (e *ImportMappingEditor) RemoveSource(field, column string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := e.mapping.RemoveSource(field, column)
	e.dirty = e.dirty || changed
	return changed
}

func (e *ImportMappingEditor) SetRules(field, text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := e.mapping.SetRules(field, text)
	e.dirty = e.dirty || changed
	return changed
}

func (e *ImportMappingEditor) Columns() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.columns)
}

func (e *ImportMappingEditor) FileName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fileName
}

func (e *ImportMappingEditor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Mapping returns a deep copy safe to render or marshal.
func (e *ImportMappingEditor) Mapping() entity.ImportMapping {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapping.Normalize()
}

// SaveDraft grava o estado atual no armazenamento local.
func (e *ImportMappingEditor) SaveDraft(ctx context.Context) error {
	if e.drafts == nil {
		return nil
	}
	if err := e.drafts.Save(ctx, e.importID, e.Mapping()); err != nil {
		return &TechnicalError{Code: CodeStorageError, Message: "erro ao salvar rascunho", Err: err}
	}
	return nil
}

// DiscardDraft apaga o rascunho local e recarrega o mapeamento do backend.
func (e *ImportMappingEditor) DiscardDraft(ctx context.Context) error {
	if e.drafts != nil {
		if err := e.drafts.Delete(ctx, e.importID); err != nil {
			return &TechnicalError{Code: CodeStorageError, Message: "erro ao apagar rascunho", Err: err}
		}
	}
	return e.Load(ctx)
}

// Save envia o mapeamento completo para o backend e descarta o rascunho local.
func (e *ImportMappingEditor) Save(ctx context.Context) error {
	mapping := e.Mapping()

	if err := e.gateway.SaveImportMapping(ctx, e.importID, mapping); err != nil {
		e.logger.Error("❌ erro ao salvar mapeamento", zap.Error(err))
		if e.notifier != nil {
			e.notifier.Failure("Erro ao salvar o mapeamento", err)
		}
		return &TechnicalError{Code: CodeBackendError, Message: "erro ao salvar mapeamento", Err: err}
	}

	e.mu.Lock()
	e.dirty = false
	e.mu.Unlock()

	if e.drafts != nil {
		if err := e.drafts.Delete(ctx, e.importID); err != nil {
			e.logger.Warn("⚠️ mapeamento salvo, mas o rascunho local não foi removido", zap.Error(err))
		}
	}

	e.logger.Info("✅ mapeamento salvo")
	if e.notifier != nil {
		e.notifier.Success("Mapeamento salvo")
	}
	return nil
}
