package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewKSUID generates a new globally unique KSUID string. Used for user ids.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewRecordID returns a UUIDv4 string for ledger records (transactions,
// categories, vendors).
func NewRecordID() string {
	return uuid.NewString()
}

// IsRecordID reports whether s parses as a UUID.
func IsRecordID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// NewSnowflakeID generates a snowflake ID using a node ID from the
// environment variable SNOWFLAKE_NODE (default 1). The node is created once
// per process so concurrent callers share its sequence.
func NewSnowflakeID() int64 {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = n
			}
		}
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			// out of range node id; fall back to node 1
			n, _ = snowflake.NewNode(1)
		}
		node = n
	})
	return node.Generate().Int64()
}
