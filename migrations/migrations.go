// Package migrations embeds the SQL schema for the Row Store tables (spec §6):
// posture, emotions, recommendations, recommendation_responses, gamification,
// Employees. Discovered by bun/migrate at startup via cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
