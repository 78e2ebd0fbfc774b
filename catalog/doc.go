// Package catalog normalizes raw movie records into the uniform Movie schema
// consumed by the index builder.
//
// Two build strategies exist and they are deliberately kept apart:
//
//   - TMDBFeed: the live TMDB discover feed. Embedding text is
//     "title: overview" (LiveFeedText).
//   - MovieLensDataset: the static MovieLens CSV dataset joined with its
//     links table. Embedding text is "title genre genre ..." (DatasetText).
//
// The two texts live in different embedding neighbourhoods; an index built by
// one strategy must not be mixed with rows produced by the other.
package catalog
