package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"stayhub/internal/domain"
)

func saveUploads(ctx context.Context, images domain.ImageStore, dir string, uploads []Upload) ([]string, error) {
	var out []string
	for _, up := range uploads {
		rel, err := images.Save(ctx, dir, up.Name, up.Data)
		if err != nil {
			removeAll(ctx, images, out)
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		out = append(out, rel)
	}
	return out, nil
}

// reconcileImages applies the keep-list contract: with keep == nil the
// existing list is untouched, otherwise existing paths missing from keep are
// deleted from storage. New uploads always append.
func reconcileImages(ctx context.Context, images domain.ImageStore, dir string, existing, keep []string, uploads []Upload) ([]string, error) {
	kept := existing
	if keep != nil {
		keepSet := make(map[string]bool, len(keep))
		for _, k := range keep {
			keepSet[k] = true
		}
		kept = make([]string, 0, len(existing))
		for _, img := range existing {
			if keepSet[img] {
				kept = append(kept, img)
			} else if err := images.Remove(ctx, img); err != nil {
				log.Warn().Str("path", img).Err(err).Msg("dropping image file failed")
			}
		}
	}
	added, err := saveUploads(ctx, images, dir, uploads)
	if err != nil {
		return nil, err
	}
	return append(kept, added...), nil
}

func removeAll(ctx context.Context, images domain.ImageStore, imgs []string) {
	for _, img := range imgs {
		if err := images.Remove(ctx, img); err != nil {
			log.Warn().Str("path", img).Err(err).Msg("image cleanup failed")
		}
	}
}
