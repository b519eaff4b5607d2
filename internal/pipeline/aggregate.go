package pipeline

import (
	"github.com/samber/lo"

	"reelfetch/internal/media"
)

// Aggregate drops descriptors that are not playlists and collapses
// duplicate stream URLs, keeping the first occurrence and discovery order.
func Aggregate(descs ...media.StreamDescriptor) []media.StreamDescriptor {
	playable := lo.Filter(descs, func(d media.StreamDescriptor, _ int) bool {
		return media.IsPlaylistURL(d.StreamURL)
	})
	return lo.UniqBy(playable, func(d media.StreamDescriptor) string {
		return d.StreamURL
	})
}
