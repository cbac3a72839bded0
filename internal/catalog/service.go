package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hitoshi/injexpro/internal/model"
	"github.com/hitoshi/injexpro/internal/repository"
)

// データセット名。ログとメトリクスのラベルに使用する。
const (
	DatasetProcedures    = "procedures"
	DatasetProcedure     = "procedure"
	DatasetComplications = "complications"
)

// ProcedureSanitizer はストア由来の施術テキストを無害化するインターフェース。
// security.ReferenceSanitizerが実装する。
type ProcedureSanitizer interface {
	SanitizeProcedure(p model.Procedure) model.Procedure
}

// Service は参照データのユースケースを提供する。
// 全ての読み取りはResilientReaderを経由し、ストア障害時もフォールバックで応答する。
type Service struct {
	procedures    *ResilientReader[struct{}, []model.Procedure]
	procedure     *ResilientReader[string, *model.Procedure]
	complications *ResilientReader[struct{}, []model.Complication]
}

// NewService はServiceを生成する。
// sanitizerはストアから読み出したデータにのみ適用し、同梱データには適用しない。
func NewService(
	procedureRepo repository.ProcedureRepository,
	complicationRepo repository.ComplicationRepository,
	sanitizer ProcedureSanitizer,
	recorder FallbackRecorder,
	logger *slog.Logger,
) *Service {
	listProcedures := func(ctx context.Context, _ struct{}) ([]model.Procedure, error) {
		procedures, err := procedureRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		for i := range procedures {
			procedures[i] = sanitizer.SanitizeProcedure(procedures[i])
		}
		return procedures, nil
	}

	getProcedure := func(ctx context.Context, slug string) (*model.Procedure, error) {
		p, err := procedureRepo.FindBySlug(ctx, slug)
		if err != nil || p == nil {
			return nil, err
		}
		clean := sanitizer.SanitizeProcedure(*p)
		return &clean, nil
	}

	listComplications := func(ctx context.Context, _ struct{}) ([]model.Complication, error) {
		return complicationRepo.List(ctx)
	}

	return &Service{
		procedures: NewResilientReader(DatasetProcedures, listProcedures,
			func(ps []model.Procedure) bool { return len(ps) == 0 },
			func(struct{}) ([]model.Procedure, bool) { return FallbackProcedures(), true },
			recorder, logger),
		procedure: NewResilientReader(DatasetProcedure, getProcedure,
			func(p *model.Procedure) bool { return p == nil },
			FallbackProcedure,
			recorder, logger),
		complications: NewResilientReader(DatasetComplications, listComplications,
			func(cs []model.Complication) bool { return len(cs) == 0 },
			func(struct{}) ([]model.Complication, bool) { return FallbackComplications(), true },
			recorder, logger),
	}
}

// ListProcedures は施術一覧を返す。ストアの障害はフォールバックで吸収するため、常に5件以上を返す。
func (s *Service) ListProcedures(ctx context.Context) ([]model.Procedure, error) {
	return s.procedures.Read(ctx, struct{}{})
}

// GetProcedure はslugに一致する施術を注入パターン付きで返す。
// ストアにもフォールバックにも存在しない場合はPROCEDURE_NOT_FOUNDを返す。
func (s *Service) GetProcedure(ctx context.Context, slug string) (*model.Procedure, error) {
	p, err := s.procedure.Read(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return nil, model.NewProcedureNotFoundError(slug)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListComplications は合併症一覧を取得し、検索語で絞り込んで返す。
func (s *Service) ListComplications(ctx context.Context, term string) ([]model.Complication, error) {
	complications, err := s.complications.Read(ctx, struct{}{})
	if err != nil {
		return nil, err
	}
	return FilterComplications(complications, term), nil
}

// ListResources は開業支援資料の一覧を返す。
func (s *Service) ListResources() []model.Resource {
	return Resources()
}
