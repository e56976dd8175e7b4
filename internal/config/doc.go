// Package config loads and watches the alignprobe configuration file
// (alignment.yaml).
//
// Top-level sections:
//   - device — frame source: source (prom|replay|sim), endpoint,
//     sample_frequency, scrape_timeout
//   - channels.section_map — per-plane gauge-angle → channel-number mapping
//   - view — auto_scale, fixed_radius, refresh_ms, mult_frames
//   - alignment_classes — the ordered tolerance tables
//     (classes_axial_strain_small / classes_axial_strain_big), out_of_class
//     fallback and the regime crossover
//   - server — http_port, snapshot_ttl
//
// Load(path) reads the YAML file, applies defaults, validates required fields
// and enum values, and rejects misordered class tables so a malformed table
// can never reach the classifier.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config; a file that fails to load keeps the
// previous config active. It handles the rename→create pattern used by
// atomic-save editors by re-adding the watch after each reload.
package config
