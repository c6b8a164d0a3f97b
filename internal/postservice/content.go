package postservice

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// syncPlan is the set of writes that turns a post's current blocks into a submitted list.
type syncPlan struct {
	// blocks is the target state in submitted order with positions 0..n-1. Blocks that
	// still have to be inserted have a zero ID.
	blocks  []ContentBlock
	deletes []int
	// updates and inserts index into blocks.
	updates []int
	inserts []int
}

// unknownIDs returns the submitted ids that are not among the current blocks.
func unknownIDs(current []ContentBlock, submitted []ContentItem) []int {
	owned := make(map[int]bool, len(current))
	for _, b := range current {
		owned[b.ID] = true
	}

	var ids []int
	seen := make(map[int]bool)
	for _, item := range submitted {
		if item.ID == nil || owned[*item.ID] || seen[*item.ID] {
			continue
		}
		seen[*item.ID] = true
		ids = append(ids, *item.ID)
	}

	return ids
}

// planSync reconciles the current blocks of a post with a submitted list. Items whose id
// matches a current block update it, every other item becomes a new block, and current
// blocks absent from the submission are deleted. A repeated id updates the block once;
// later occurrences are inserted as new blocks. Unchanged blocks produce no write.
func planSync(postID int, current []ContentBlock, submitted []ContentItem) syncPlan {
	byID := make(map[int]ContentBlock, len(current))
	for _, b := range current {
		byID[b.ID] = b
	}

	plan := syncPlan{blocks: make([]ContentBlock, 0, len(submitted))}
	kept := make(map[int]bool, len(submitted))

	for pos, item := range submitted {
		if item.ID != nil {
			if b, ok := byID[*item.ID]; ok && !kept[b.ID] {
				kept[b.ID] = true
				if b.Body != item.Body || b.Position != pos {
					plan.updates = append(plan.updates, len(plan.blocks))
				}
				b.Body = item.Body
				b.Position = pos
				plan.blocks = append(plan.blocks, b)
				continue
			}
		}

		plan.inserts = append(plan.inserts, len(plan.blocks))
		plan.blocks = append(plan.blocks, ContentBlock{PostID: postID, Position: pos, Body: item.Body})
	}

	for _, b := range current {
		if !kept[b.ID] {
			plan.deletes = append(plan.deletes, b.ID)
		}
	}

	return plan
}

// syncContent makes the post's blocks equal the submitted list inside tx. The post row is
// locked first so concurrent syncs of the same post run one after another.
func (m *PostModel) syncContent(ctx context.Context, tx *sql.Tx, postID int, submitted []ContentItem) ([]ContentBlock, error) {
	if _, err := m.lockPost(ctx, tx, postID); err != nil {
		return nil, err
	}

	current, err := m.loadBlocks(ctx, tx, postID)
	if err != nil {
		return nil, err
	}

	if ids := unknownIDs(current, submitted); len(ids) > 0 {
		owners, err := m.blockOwners(ctx, tx, ids)
		if err != nil {
			return nil, err
		}
		for _, owner := range owners {
			if owner != postID {
				return nil, ErrForeignBlock
			}
		}
	}

	plan := planSync(postID, current, submitted)

	if err := m.deleteBlocks(ctx, tx, postID, plan.deletes); err != nil {
		return nil, err
	}

	for _, i := range plan.updates {
		if err := m.updateBlock(ctx, tx, &plan.blocks[i]); err != nil {
			return nil, err
		}
	}

	for _, i := range plan.inserts {
		if err := m.insertBlock(ctx, tx, &plan.blocks[i]); err != nil {
			return nil, err
		}
	}

	return plan.blocks, nil
}

func (m *PostModel) loadBlocks(ctx context.Context, tx *sql.Tx, postID int) ([]ContentBlock, error) {
	query := `
		SELECT id, post_id, position, body, created_at, updated_at
		FROM post_contents
		WHERE post_id = $1
		ORDER BY position`

	rows, err := tx.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []ContentBlock
	for rows.Next() {
		var b ContentBlock
		err := rows.Scan(&b.ID, &b.PostID, &b.Position, &b.Body, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blocks, nil
}

// blockOwners maps each existing block id to the post that owns it.
func (m *PostModel) blockOwners(ctx context.Context, tx *sql.Tx, ids []int) (map[int]int, error) {
	query := `
		SELECT id, post_id
		FROM post_contents
		WHERE id = ANY($1)`

	rows, err := tx.QueryContext(ctx, query, pq.Array(toInt64s(ids)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owners := make(map[int]int)
	for rows.Next() {
		var id, postID int
		if err := rows.Scan(&id, &postID); err != nil {
			return nil, err
		}
		owners[id] = postID
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return owners, nil
}

func (m *PostModel) deleteBlocks(ctx context.Context, tx *sql.Tx, postID int, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		DELETE FROM post_contents
		WHERE post_id = $1 AND id = ANY($2)`

	res, err := tx.ExecContext(ctx, query, postID, pq.Array(toInt64s(ids)))
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != int64(len(ids)) {
		return fmt.Errorf("expected %d rows to be affected, got %d", len(ids), rows)
	}

	return nil
}

func (m *PostModel) updateBlock(ctx context.Context, tx *sql.Tx, b *ContentBlock) error {
	query := `
		UPDATE post_contents
		SET body = $1, position = $2, updated_at = NOW()
		WHERE id = $3 AND post_id = $4
		RETURNING updated_at`

	return tx.QueryRowContext(ctx, query, b.Body, b.Position, b.ID, b.PostID).Scan(&b.UpdatedAt)
}

func (m *PostModel) insertBlock(ctx context.Context, tx *sql.Tx, b *ContentBlock) error {
	query := `
		INSERT INTO post_contents (post_id, position, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return tx.QueryRowContext(ctx, query, b.PostID, b.Position, b.Body).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func toInt64s(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
