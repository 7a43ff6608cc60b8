package tags

import (
	"context"
	"fmt"

	"itinventory/internal/repository"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type TagsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *TagsRepository {
	return &TagsRepository{repository: r}
}

func (r *TagsRepository) GetTags(ctx context.Context) ([]models.AssetTag, error) {
	tags := []models.AssetTag{}
	err := r.repository.GoquDBWrapper.
		From("asset_tags").
		Select("id", "name", "color").
		Order(goqu.C("name").Asc()).
		Executor().ScanStructsContext(ctx, &tags)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	return tags, nil
}

func (r *TagsRepository) GetTag(ctx context.Context, id int) (*models.AssetTag, error) {
	var tag models.AssetTag
	found, err := r.repository.GoquDBWrapper.
		From("asset_tags").
		Select("id", "name", "color").
		Where(goqu.Ex{"id": id}).
		Executor().ScanStructContext(ctx, &tag)
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Tag", id)
	}

	return &tag, nil
}

func (r *TagsRepository) PersistTag(ctx context.Context, tag models.AssetTag) (*models.AssetTag, error) {
	_, err := r.repository.GoquDBWrapper.
		Insert("asset_tags").
		Rows(goqu.Record{"name": tag.Name, "color": tag.Color}).
		Returning("id").
		Executor().ScanValContext(ctx, &tag.ID)
	if err != nil {
		return nil, repository.WrapError(err, "failed to insert tag")
	}

	return &tag, nil
}

func (r *TagsRepository) UpdateTag(ctx context.Context, tag models.AssetTag) error {
	res, err := r.repository.GoquDBWrapper.
		Update("asset_tags").
		Set(goqu.Record{"name": tag.Name, "color": tag.Color}).
		Where(goqu.Ex{"id": tag.ID}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to update tag")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return custom_error.NewNotFoundError("Tag", tag.ID)
	}

	return nil
}

func (r *TagsRepository) DeleteTag(ctx context.Context, id int) (bool, error) {
	res, err := r.repository.GoquDBWrapper.
		Delete("asset_tags").
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, repository.WrapError(err, "failed to delete tag")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// CountExisting returns how many of ids are existing tags.
func (r *TagsRepository) CountExisting(ctx context.Context, tx repository.Executor, ids []int) (int, error) {
	var count int
	_, err := r.repository.Executor(tx).
		From("asset_tags").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"id": ids}).
		Executor().ScanValContext(ctx, &count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}

	return count, nil
}

func (r *TagsRepository) ClearAssetTags(ctx context.Context, tx repository.Executor, assetID int) error {
	_, err := r.repository.Executor(tx).
		Delete("asset_tag_assignments").
		Where(goqu.Ex{"asset_id": assetID}).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear asset tags: %w", err)
	}

	return nil
}

func (r *TagsRepository) AssignTags(ctx context.Context, tx repository.Executor, assetID int, tagIDs []int) error {
	rows := make([]interface{}, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		rows = append(rows, goqu.Record{"asset_id": assetID, "tag_id": tagID})
	}

	_, err := r.repository.Executor(tx).
		Insert("asset_tag_assignments").
		Rows(rows...).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to assign tags")
	}

	return nil
}

func (r *TagsRepository) GetAssetTags(ctx context.Context, assetID int) ([]models.AssetTag, error) {
	tags := []models.AssetTag{}
	err := r.repository.GoquDBWrapper.
		From(goqu.T("asset_tags").As("t")).
		Join(goqu.T("asset_tag_assignments").As("ta"), goqu.On(goqu.Ex{"ta.tag_id": goqu.I("t.id")})).
		Select(goqu.I("t.id").As("id"), goqu.I("t.name").As("name"), goqu.I("t.color").As("color")).
		Where(goqu.Ex{"ta.asset_id": assetID}).
		Order(goqu.I("t.name").Asc()).
		Executor().ScanStructsContext(ctx, &tags)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset tags: %w", err)
	}

	return tags, nil
}

type assetTagRow struct {
	AssetID int     `db:"asset_id"`
	ID      int     `db:"id"`
	Name    string  `db:"name"`
	Color   *string `db:"color"`
}

// GetTagsForAssets loads the tags of every asset in assetIDs with one query,
// keyed by asset id. Assets without tags are absent from the map.
func (r *TagsRepository) GetTagsForAssets(ctx context.Context, assetIDs []int) (map[int][]models.AssetTag, error) {
	byAsset := make(map[int][]models.AssetTag)
	if len(assetIDs) == 0 {
		return byAsset, nil
	}

	rows := []assetTagRow{}
	err := r.repository.GoquDBWrapper.
		From(goqu.T("asset_tags").As("t")).
		Join(goqu.T("asset_tag_assignments").As("ta"), goqu.On(goqu.Ex{"ta.tag_id": goqu.I("t.id")})).
		Select(
			goqu.I("ta.asset_id").As("asset_id"),
			goqu.I("t.id").As("id"),
			goqu.I("t.name").As("name"),
			goqu.I("t.color").As("color"),
		).
		Where(goqu.Ex{"ta.asset_id": assetIDs}).
		Order(goqu.I("ta.asset_id").Asc(), goqu.I("t.name").Asc()).
		Executor().ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for assets: %w", err)
	}

	for _, row := range rows {
		byAsset[row.AssetID] = append(byAsset[row.AssetID], models.AssetTag{ID: row.ID, Name: row.Name, Color: row.Color})
	}

	return byAsset, nil
}

// GetTaggedAssetIDs lists the ids of assets that are not deleted and carry the tag.
func (r *TagsRepository) GetTaggedAssetIDs(ctx context.Context, tagID int) ([]int, error) {
	ids := []int{}
	err := r.repository.GoquDBWrapper.
		From(goqu.T("asset_tag_assignments").As("ta")).
		Join(goqu.T("assets").As("a"), goqu.On(goqu.Ex{"ta.asset_id": goqu.I("a.id")})).
		Select(goqu.I("a.id")).
		Where(goqu.Ex{"ta.tag_id": tagID, "a.deleted": false}).
		Order(goqu.I("a.id").Asc()).
		Executor().ScanValsContext(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list tagged assets: %w", err)
	}

	return ids, nil
}
