package mysql

const insertRunSQL = `
INSERT INTO runs (id, base_url, started_at, finished_at)
VALUES (?, ?, ?, ?)
`

const finishRunSQL = `UPDATE runs SET finished_at = ? WHERE id = ?`

// A scenario re-run within the same run replaces its previous result.
const upsertResultSQL = `
INSERT INTO scenario_results
  (run_id, scenario_id, suite, title, status, hard_error, soft_failures, started_at, duration_ms)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  suite         = VALUES(suite),
  title         = VALUES(title),
  status        = VALUES(status),
  hard_error    = VALUES(hard_error),
  soft_failures = VALUES(soft_failures),
  started_at    = VALUES(started_at),
  duration_ms   = VALUES(duration_ms)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getRunSQL = `
SELECT id, base_url, started_at, finished_at
FROM runs
WHERE id = ?
`

const countByStatusSQL = `
SELECT status, COUNT(*)
FROM scenario_results
WHERE run_id = ?
GROUP BY status
`

const listResultsPrefix = `
SELECT run_id, scenario_id, suite, title, status, hard_error, soft_failures, started_at, duration_ms
FROM scenario_results
WHERE run_id = ?`
