package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/knights/internal/domain"
)

var tracer = otel.Tracer("knight")

const MsgKnightDeleted = "Knight fought the good fight!"

type DeleteResult struct {
	Message string `json:"message"`
}

type KnightUsecase struct {
	repo      KnightRepository
	cache     SnapshotCache
	validator KnightValidator
	now       func() time.Time
	newID     func() string
}

func NewKnightUsecase(repo KnightRepository, cache SnapshotCache) *KnightUsecase {
	return &KnightUsecase{
		repo:  repo,
		cache: cache,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (uc *KnightUsecase) Create(ctx context.Context, input CreateKnightInput) (domain.Knight, error) {
	ctx, span := tracer.Start(ctx, "Knight.Usecase.Create")
	defer span.End()

	slog.InfoContext(
		ctx, "starting-method",
		slog.String("method", "create"),
		slog.String("nickname", input.Nickname),
		slog.String("module", "knight"),
	)

	taken := false
	_, err := uc.repo.FindByNickname(ctx, input.Nickname)
	switch {
	case err == nil:
		taken = true
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.Knight{}, uc.internal(ctx, span, "create", err)
	}

	knight, err := uc.validator.Validate(input, taken)
	if err != nil {
		span.RecordError(err)
		return domain.Knight{}, err
	}

	knight.ID = uc.newID()
	for i := range knight.Weapons {
		knight.Weapons[i].ID = uc.newID()
	}

	stored, err := uc.repo.Insert(ctx, knight)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// lost a race with a concurrent create
			span.RecordError(err)
			return domain.Knight{}, domain.ValidationError{Message: MsgNicknameTaken}
		}
		return domain.Knight{}, uc.internal(ctx, span, "create", err)
	}

	span.SetAttributes(attribute.String("KnightId", stored.ID))
	slog.InfoContext(
		ctx, "finishing-method",
		slog.String("method", "create"),
		slog.String("id", stored.ID),
		slog.String("module", "knight"),
	)

	return stored, nil
}

func (uc *KnightUsecase) Get(ctx context.Context, id string) (domain.KnightView, error) {
	ctx, span := tracer.Start(ctx, "Knight.Usecase.Get")
	defer span.End()
	span.SetAttributes(attribute.String("KnightId", id))

	slog.DebugContext(
		ctx, "starting-method",
		slog.String("method", "findById"),
		slog.String("id", id),
		slog.String("module", "knight"),
	)

	knight, err := uc.find(ctx, span, "get", id)
	if err != nil {
		return domain.KnightView{}, err
	}

	view, err := domain.View(knight, uc.now())
	if err != nil {
		return domain.KnightView{}, uc.internal(ctx, span, "get", errors.Wrapf(err, "knight %s", id))
	}

	slog.DebugContext(
		ctx, "finishing-method",
		slog.String("method", "findById"),
		slog.String("id", id),
		slog.String("module", "knight"),
	)

	return view, nil
}

// List serves a page of the roster, or the hero snapshot when the term is
// domain.HeroesTerm.
func (uc *KnightUsecase) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult, error) {
	ctx, span := tracer.Start(ctx, "Knight.Usecase.List")
	defer span.End()

	filter = filter.Normalize()
	span.SetAttributes(
		attribute.String("Term", filter.Term),
		attribute.Int("Page", filter.Page),
		attribute.Int("PageSize", filter.PageSize),
	)

	slog.InfoContext(
		ctx, "starting-method",
		slog.String("method", "findAll"),
		slog.String("term", filter.Term),
		slog.Int("page", filter.Page),
		slog.Int("pageSize", filter.PageSize),
		slog.String("module", "knight"),
	)

	if filter.Term == domain.HeroesTerm {
		return uc.heroes(ctx, span)
	}

	page, err := uc.repo.Paginate(ctx, domain.PageQuery{
		Term:   filter.Term,
		Page:   filter.Page,
		Limit:  filter.PageSize,
		Sort:   domain.SortByName,
		Fields: domain.SummaryFields,
	})
	if err != nil {
		return nil, uc.internal(ctx, span, "list", err)
	}

	now := uc.now()
	data := make([]domain.KnightSummary, 0, len(page.Docs))
	for _, doc := range page.Docs {
		summary, err := domain.Summarize(doc, now)
		if err != nil {
			return nil, uc.internal(ctx, span, "list", errors.Wrapf(err, "knight %s", doc.ID))
		}
		data = append(data, summary)
	}

	slog.InfoContext(
		ctx, "finishing-method",
		slog.String("method", "findAll"),
		slog.Int64("total", page.Total),
		slog.String("module", "knight"),
	)

	return domain.KnightPage{
		Total:       page.Total,
		CurrentPage: page.Page,
		PageSize:    page.Limit,
		Data:        data,
	}, nil
}

func (uc *KnightUsecase) heroes(ctx context.Context, span trace.Span) (domain.ListResult, error) {
	cached, err := uc.cache.Get(ctx, domain.HeroesCacheKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			return nil, domain.NotFoundError{Resource: "heroes"}
		}
		return nil, uc.internal(ctx, span, "list", err)
	}

	var hero domain.Knight
	if err := json.Unmarshal([]byte(cached), &hero); err != nil {
		return nil, uc.internal(ctx, span, "list", errors.Wrap(err, "decode hero snapshot"))
	}

	summary, err := domain.Summarize(hero, uc.now())
	if err != nil {
		return nil, uc.internal(ctx, span, "list", errors.Wrap(err, "hero snapshot"))
	}
	summary.ID = ""

	return domain.NewHeroSnapshot(summary), nil
}

// Update replaces the nickname only. Uniqueness is left to the storage
// constraint; a collision comes back as a validation error.
func (uc *KnightUsecase) Update(ctx context.Context, id string, input UpdateKnightInput) (domain.Knight, error) {
	ctx, span := tracer.Start(ctx, "Knight.Usecase.Update")
	defer span.End()
	span.SetAttributes(attribute.String("KnightId", id))

	slog.InfoContext(
		ctx, "starting-method",
		slog.String("method", "update"),
		slog.String("id", id),
		slog.String("nickname", input.Nickname),
		slog.String("module", "knight"),
	)

	if strings.TrimSpace(input.Nickname) == "" {
		err := domain.ValidationError{Message: MsgNicknameRequired}
		span.RecordError(err)
		return domain.Knight{}, err
	}

	knight, err := uc.find(ctx, span, "update", id)
	if err != nil {
		return domain.Knight{}, err
	}

	knight.Nickname = input.Nickname

	saved, err := uc.repo.Save(ctx, knight)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			span.RecordError(err)
			return domain.Knight{}, domain.ValidationError{Message: MsgNicknameTaken}
		case errors.Is(err, domain.ErrNotFound):
			span.RecordError(err)
			return domain.Knight{}, knightNotFound(id)
		}
		return domain.Knight{}, uc.internal(ctx, span, "update", err)
	}

	slog.InfoContext(
		ctx, "finishing-method",
		slog.String("method", "update"),
		slog.String("id", id),
		slog.String("module", "knight"),
	)

	return saved, nil
}

// Delete snapshots the knight into the heroes slot, then removes it.
func (uc *KnightUsecase) Delete(ctx context.Context, id string) (DeleteResult, error) {
	ctx, span := tracer.Start(ctx, "Knight.Usecase.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("KnightId", id))

	slog.InfoContext(
		ctx, "starting-method",
		slog.String("method", "delete"),
		slog.String("id", id),
		slog.String("module", "knight"),
	)

	knight, err := uc.find(ctx, span, "delete", id)
	if err != nil {
		return DeleteResult{}, err
	}

	snapshot, err := json.Marshal(knight)
	if err != nil {
		return DeleteResult{}, uc.internal(ctx, span, "delete", errors.Wrap(err, "encode hero snapshot"))
	}

	if err := uc.cache.Set(ctx, domain.HeroesCacheKey, string(snapshot)); err != nil {
		return DeleteResult{}, uc.internal(ctx, span, "delete", err)
	}

	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return DeleteResult{}, uc.internal(ctx, span, "delete", err)
	}

	switch deleted {
	case 1:
		slog.InfoContext(
			ctx, "finishing-method",
			slog.String("method", "delete"),
			slog.String("id", id),
			slog.String("module", "knight"),
		)
		return DeleteResult{Message: MsgKnightDeleted}, nil
	case 0:
		return DeleteResult{}, knightNotFound(id)
	default:
		return DeleteResult{}, uc.internal(ctx, span, "delete", fmt.Errorf("deleted %d records for id %s", deleted, id))
	}
}

func (uc *KnightUsecase) find(ctx context.Context, span trace.Span, op, id string) (domain.Knight, error) {
	knight, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			return domain.Knight{}, knightNotFound(id)
		}
		return domain.Knight{}, uc.internal(ctx, span, op, err)
	}
	return knight, nil
}

// internal logs the cause and hides it behind domain.InternalError.
func (uc *KnightUsecase) internal(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	slog.ErrorContext(
		ctx, "unexpected failure",
		slog.String("method", op),
		slog.String("error", err.Error()),
		slog.String("module", "knight"),
	)
	return domain.InternalError{Op: op, Err: err}
}

func knightNotFound(id string) error {
	return domain.NotFoundError{Resource: fmt.Sprintf("Knight with id %s", id)}
}
