package tags

import (
	"context"
	"fmt"

	"itinventory/internal/repository"
	"itinventory/pkg/auditlog"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"
)

type Store interface {
	GetTags(ctx context.Context) ([]models.AssetTag, error)
	GetTag(ctx context.Context, id int) (*models.AssetTag, error)
	PersistTag(ctx context.Context, tag models.AssetTag) (*models.AssetTag, error)
	UpdateTag(ctx context.Context, tag models.AssetTag) error
	DeleteTag(ctx context.Context, id int) (bool, error)
	CountExisting(ctx context.Context, tx repository.Executor, ids []int) (int, error)
	ClearAssetTags(ctx context.Context, tx repository.Executor, assetID int) error
	AssignTags(ctx context.Context, tx repository.Executor, assetID int, tagIDs []int) error
	GetAssetTags(ctx context.Context, assetID int) ([]models.AssetTag, error)
	GetTaggedAssetIDs(ctx context.Context, tagID int) ([]int, error)
}

type ReferenceChecker interface {
	ExistsByID(ctx context.Context, table string, id int) (bool, error)
}

type TagService struct {
	repo     Store
	tx       repository.Transactor
	refs     ReferenceChecker
	auditLog auditlog.Logger
}

func NewService(repo Store, tx repository.Transactor, refs ReferenceChecker, auditLog auditlog.Logger) *TagService {
	return &TagService{repo: repo, tx: tx, refs: refs, auditLog: auditLog}
}

func (s *TagService) ListTags(ctx context.Context) ([]models.AssetTag, error) {
	return s.repo.GetTags(ctx)
}

func (s *TagService) CreateTag(ctx context.Context, tag models.AssetTag) (*models.AssetTag, error) {
	created, err := s.repo.PersistTag(ctx, tag)
	if err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "create", map[string]interface{}{"name": created.Name}, created)
	return created, nil
}

func (s *TagService) UpdateTag(ctx context.Context, tag models.AssetTag) (*models.AssetTag, error) {
	if err := s.repo.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "update", map[string]interface{}{"name": tag.Name}, &tag)
	return &tag, nil
}

func (s *TagService) DeleteTag(ctx context.Context, id int) error {
	deleted, err := s.repo.DeleteTag(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return custom_error.NewNotFoundError("Tag", id)
	}

	s.auditLog.Log(ctx, "delete", nil, &models.AssetTag{ID: id})
	return nil
}

// Replace makes tagIDs the complete tag set of the asset. Duplicates are
// collapsed; an unknown tag id fails the whole replacement.
func (s *TagService) Replace(ctx context.Context, tx repository.Executor, assetID int, tagIDs []int) error {
	unique := Dedupe(tagIDs)

	if len(unique) > 0 {
		count, err := s.repo.CountExisting(ctx, tx, unique)
		if err != nil {
			return err
		}
		if count != len(unique) {
			return custom_error.NewValidationError(fmt.Sprintf("%d of the requested tags do not exist", len(unique)-count))
		}
	}

	if err := s.repo.ClearAssetTags(ctx, tx, assetID); err != nil {
		return err
	}

	if len(unique) == 0 {
		return nil
	}

	return s.repo.AssignTags(ctx, tx, assetID, unique)
}

// ReplaceAssetTags runs Replace in its own transaction.
func (s *TagService) ReplaceAssetTags(ctx context.Context, assetID int, tagIDs []int) ([]models.AssetTag, error) {
	exists, err := s.refs.ExistsByID(ctx, "assets", assetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, custom_error.NewNotFoundError("Asset", assetID)
	}

	err = s.tx.WithTransaction(ctx, func(tx repository.Executor) error {
		return s.Replace(ctx, tx, assetID, tagIDs)
	})
	if err != nil {
		return nil, err
	}

	tags, err := s.repo.GetAssetTags(ctx, assetID)
	if err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "tags_replaced", map[string]interface{}{"tag_ids": Dedupe(tagIDs)}, &models.Asset{ID: assetID})
	return tags, nil
}

func (s *TagService) ListAssetTags(ctx context.Context, assetID int) ([]models.AssetTag, error) {
	return s.repo.GetAssetTags(ctx, assetID)
}

func (s *TagService) ListTaggedAssetIDs(ctx context.Context, tagID int) ([]int, error) {
	if _, err := s.repo.GetTag(ctx, tagID); err != nil {
		return nil, err
	}
	return s.repo.GetTaggedAssetIDs(ctx, tagID)
}

// Dedupe keeps the first occurrence of every id and drops non-positive ids.
func Dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if id < 1 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
