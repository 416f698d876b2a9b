package driver

// Every node written by an export carries the run_id of that export, so runs
// can coexist in one database and be deleted as a unit.

var IndexQueries = []string{
	"CREATE INDEX ON :Paper(doi);",
	"CREATE INDEX ON :Paper(run_id);",
	"CREATE INDEX ON :Community(run_id);",
	"CREATE INDEX ON :Run(run_id);",
}

const (
	SaveRunQuery = `
		MERGE (r:Run {run_id: $run_id})
		SET r.created_at = $created_at,
			r.papers = $papers,
			r.communities = $communities,
			r.modularity = $modularity,
			r.resolution = $resolution
		RETURN r.run_id AS run_id
	`

	SavePapersQuery = `
		UNWIND $rows AS row
		MERGE (p:Paper {run_id: $run_id, doi: row.doi})
		SET p.uuid = row.uuid,
			p.title = row.title,
			p.entities = row.entities,
			p.cluster_id = row.cluster_id,
			p.hub_score = row.hub_score
		RETURN count(p) AS saved
	`

	SaveCommunitiesQuery = `
		UNWIND $rows AS row
		MERGE (c:Community {run_id: $run_id, cluster_id: row.cluster_id})
		SET c.uuid = row.uuid,
			c.size = row.size,
			c.top_entities = row.top_entities,
			c.name = row.name,
			c.summary = row.summary
		RETURN count(c) AS saved
	`

	SaveSharesEntitiesQuery = `
		UNWIND $rows AS row
		MATCH (a:Paper {run_id: $run_id, doi: row.from})
		MATCH (b:Paper {run_id: $run_id, doi: row.to})
		MERGE (a)-[e:SHARES_ENTITIES]->(b)
		SET e.weight = row.weight
		RETURN count(e) AS saved
	`

	SaveHasMemberQuery = `
		UNWIND $rows AS row
		MATCH (c:Community {run_id: $run_id, cluster_id: row.cluster_id})
		MATCH (p:Paper {run_id: $run_id, doi: row.doi})
		MERGE (c)-[r:HAS_MEMBER]->(p)
		RETURN count(r) AS saved
	`

	SaveCitesQuery = `
		UNWIND $rows AS row
		MATCH (a:Paper {run_id: $run_id, doi: row.from})
		MATCH (b:Paper {run_id: $run_id, doi: row.to})
		MERGE (a)-[c:CITES]->(b)
		RETURN count(c) AS saved
	`

	DeleteRunQuery = `
		MATCH (n {run_id: $run_id})
		DETACH DELETE n
	`

	GetRunCommunitiesQuery = `
		MATCH (c:Community {run_id: $run_id})-[:HAS_MEMBER]->(p:Paper)
		RETURN c.cluster_id AS cluster_id, c.name AS name, count(p) AS size
		ORDER BY size DESC, cluster_id ASC
	`
)
