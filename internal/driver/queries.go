package driver

const (
	SavePersonNodeQuery = `
		MERGE (p:Person {uuid: $uuid})
		SET p.display_name = $display_name,
			p.method = $method,
			p.confidence = $confidence,
			p.created_at = $created_at
		RETURN p.uuid AS uuid
	`

	SaveTrackerIdentityNodeQuery = `
		MERGE (i:Identity:TrackerIdentity {uuid: $uuid})
		SET i.system = $system,
			i.primary_id = $primary_id,
			i.display_name = $display_name,
			i.login = $login,
			i.email = $email,
			i.created_at = $created_at
		RETURN i.uuid AS uuid
	`

	SaveScmIdentityNodeQuery = `
		MERGE (i:Identity:ScmIdentity {uuid: $uuid})
		SET i.system = $system,
			i.primary_id = $primary_id,
			i.display_name = $display_name,
			i.login = $login,
			i.email = $email,
			i.created_at = $created_at
		RETURN i.uuid AS uuid
	`

	SaveHasIdentityEdgeQuery = `
		MATCH (p:Person {uuid: $person_uuid})
		MATCH (i:Identity {uuid: $identity_uuid})
		MERGE (p)-[e:HAS_IDENTITY {uuid: $uuid}]->(i)
		SET e.method = $method,
			e.confidence = $confidence,
			e.alias = $alias,
			e.created_at = $created_at
		RETURN e.uuid AS uuid
	`

	DeleteRunQuery = `
		MATCH (n)
		WHERE n:Person OR n:Identity
		DETACH DELETE n
	`

	GetPersonIdentitiesQuery = `
		MATCH (p:Person {uuid: $uuid})-[e:HAS_IDENTITY]->(i:Identity)
		RETURN i.uuid AS uuid, i.system AS system, i.primary_id AS primary_id,
			e.alias AS alias, e.method AS method, e.confidence AS confidence
	`

	GetUnlinkedIdentitiesQuery = `
		MATCH (i:Identity)
		WHERE NOT (:Person)-[:HAS_IDENTITY]->(i)
		RETURN i.uuid AS uuid, i.system AS system, i.primary_id AS primary_id
	`
)
