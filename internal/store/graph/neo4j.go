package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore keeps the pairwise relationship graph in Neo4j:
// (:Participant)-[:COMMUNICATES_WITH]->(:Participant) edges carrying message
// and intervention counters, plus per-pattern tallies on the edge.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore connects and verifies connectivity up front.
func NewNeo4jStore(ctx context.Context, uri, username, password, database string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""), func(cfg *neo4j.Config) {
		cfg.SocketConnectTimeout = 10 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j init driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Neo4jStore{driver: driver, database: database}, nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) write(ctx context.Context, cypher string, params map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, params)
	})
	return err
}

func (s *Neo4jStore) RecordMessage(ctx context.Context, senderID, receiverID, roomID string) error {
	err := s.write(ctx, `
		MERGE (a:Participant {id: $sender})
		MERGE (b:Participant {id: $receiver})
		MERGE (a)-[r:COMMUNICATES_WITH {room_id: $room}]->(b)
		ON CREATE SET r.messages = 0, r.interventions = 0
		SET r.messages = r.messages + 1, r.last_message_at = $now`,
		map[string]any{
			"sender": senderID, "receiver": receiverID, "room": roomID,
			"now": time.Now().UTC().Format(time.RFC3339Nano),
		})
	if err != nil {
		return fmt.Errorf("graph record message: %w", err)
	}
	return nil
}

func (s *Neo4jStore) RecordIntervention(ctx context.Context, senderID, receiverID, roomID, patternID string) error {
	err := s.write(ctx, `
		MERGE (a:Participant {id: $sender})
		MERGE (b:Participant {id: $receiver})
		MERGE (a)-[r:COMMUNICATES_WITH {room_id: $room}]->(b)
		ON CREATE SET r.messages = 0, r.interventions = 0
		SET r.interventions = r.interventions + 1,
		    r.last_intervention_at = $now,
		    r.last_pattern = $pattern`,
		map[string]any{
			"sender": senderID, "receiver": receiverID, "room": roomID,
			"pattern": patternID,
			"now":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	if err != nil {
		return fmt.Errorf("graph record intervention: %w", err)
	}
	return nil
}

func (s *Neo4jStore) PairHealth(ctx context.Context, senderID, receiverID string) (Health, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer func() { _ = session.Close(ctx) }()

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, `
			MATCH (a:Participant {id: $sender})-[r:COMMUNICATES_WITH]->(b:Participant {id: $receiver})
			RETURN sum(r.messages) AS messages, sum(r.interventions) AS interventions`,
			map[string]any{"sender": senderID, "receiver": receiverID})
		if err != nil {
			return nil, err
		}
		record, err := records.Single(ctx)
		if err != nil {
			return nil, err
		}
		health := Health{}
		if v, ok := record.Get("messages"); ok {
			if n, ok := v.(int64); ok {
				health.Messages = n
			}
		}
		if v, ok := record.Get("interventions"); ok {
			if n, ok := v.(int64); ok {
				health.Interventions = n
			}
		}
		return health, nil
	})
	if err != nil {
		return Health{}, fmt.Errorf("graph pair health: %w", err)
	}
	return result.(Health), nil
}
