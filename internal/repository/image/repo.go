package image

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/kailas-cloud/herbadex/internal/domain"
	domimg "github.com/kailas-cloud/herbadex/internal/domain/image"
)

// casScript replaces the analysis field only when the stored revision matches
// the one the writer observed, bumping the revision on success.
// Returns 1 on success, 0 on revision mismatch, -1 when the record is gone.
const casScript = `local rev = redis.call('HGET', KEYS[1], 'revision')
if not rev then return -1 end
if rev ~= ARGV[2] then return 0 end
redis.call('HSET', KEYS[1], 'analysis', ARGV[1], 'revision', tostring(tonumber(ARGV[2]) + 1))
return 1`

// store is the consumer interface for image records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Eval(ctx context.Context, script string, keys, args []string) (int64, error)
}

// Repo implements usecase/image.Repository.
type Repo struct {
	store store
}

// New creates an image record repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create persists a new record. The record carries its own pending analysis
// marker and initial revision.
func (r *Repo) Create(ctx context.Context, rec *domimg.Record) error {
	key := imageKey(rec.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(rec)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a record by ID.
func (r *Repo) Get(ctx context.Context, id string) (domimg.Record, error) {
	key := imageKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domimg.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domimg.Record{}, domain.ErrImageNotFound
	}
	return parseHashFields(id, m), nil
}

// List returns all records, newest first.
func (r *Repo) List(ctx context.Context) ([]domimg.Record, error) {
	keys, err := r.store.Scan(ctx, domain.KeyPrefix+"images:*")
	if err != nil {
		return nil, fmt.Errorf("scan images: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	records := make([]domimg.Record, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			// Deleted between SCAN and HGETALL.
			continue
		}
		records = append(records, parseHashFields(extractID(keys[i]), m))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt().After(records[j].CreatedAt())
	})
	return records, nil
}

// SetAnalysis unconditionally replaces the analysis field (administrative
// override, no shape validation, no revision check).
func (r *Repo) SetAnalysis(ctx context.Context, id, value string) error {
	key := imageKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrImageNotFound
	}
	if err := r.store.HSet(ctx, key, map[string]string{"analysis": value}); err != nil {
		return fmt.Errorf("hset analysis %s: %w", key, err)
	}
	return nil
}

// CompareAndSetAnalysis replaces the analysis field only if the stored
// revision still equals expectedRevision. A mismatch yields
// domain.ErrRevisionConflict carrying the current revision.
func (r *Repo) CompareAndSetAnalysis(ctx context.Context, id, value string, expectedRevision int) error {
	key := imageKey(id)
	res, err := r.store.Eval(ctx, casScript, []string{key}, []string{value, strconv.Itoa(expectedRevision)})
	if err != nil {
		return fmt.Errorf("cas analysis %s: %w", key, err)
	}

	switch res {
	case 1:
		return nil
	case -1:
		return domain.ErrImageNotFound
	default:
		current, gerr := r.Get(ctx, id)
		if gerr != nil {
			if errors.Is(gerr, domain.ErrImageNotFound) {
				return domain.ErrImageNotFound
			}
			return fmt.Errorf("fetch current revision: %w", gerr)
		}
		return domain.NewRevisionConflict(current.Revision())
	}
}

func imageKey(id string) string {
	return fmt.Sprintf("%simages:%s", domain.KeyPrefix, id)
}

func extractID(key string) string {
	prefix := domain.KeyPrefix + "images:"
	if len(key) > len(prefix) {
		return key[len(prefix):]
	}
	return key
}

// buildHashFields converts a domain Record into a flat map[string]string for HSET.
func buildHashFields(rec *domimg.Record) map[string]string {
	return map[string]string{
		"name":        rec.Name(),
		"contentType": rec.ContentType(),
		"size":        strconv.FormatInt(rec.Size(), 10),
		"url":         rec.URL(),
		"analysis":    rec.Analysis(),
		"revision":    strconv.Itoa(rec.Revision()),
		"createdAt":   strconv.FormatInt(rec.CreatedAt().UnixMilli(), 10),
	}
}

// parseHashFields converts a flat hash map back into a domain Record.
func parseHashFields(id string, m map[string]string) domimg.Record {
	size, _ := strconv.ParseInt(m["size"], 10, 64)
	revision, _ := strconv.Atoi(m["revision"])
	createdMs, _ := strconv.ParseInt(m["createdAt"], 10, 64)

	return domimg.Reconstruct(
		id, m["name"], m["contentType"], size, m["url"], m["analysis"],
		revision, time.UnixMilli(createdMs),
	)
}
