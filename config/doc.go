// Package config loads CineMatch configuration with koanf in three layers,
// highest priority last:
//
//  1. built-in defaults (Default)
//  2. an optional YAML file (-config flag, CINEMATCH_CONFIG, or ./cinematch.yaml)
//  3. environment variables: CINEMATCH_<SECTION>__<KEY>, for example
//     CINEMATCH_ENCODER__MODEL=all-minilm or CINEMATCH_RECOMMEND__DEFAULT_TOP_K=8.
//     TMDB_API_KEY and LLM_API_KEY are accepted as shortcuts for the two secrets.
//
// Config is immutable after Load and safe for concurrent reads.
package config
