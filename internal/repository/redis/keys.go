package redisrepo

import (
	"fmt"

	"github.com/kirinyoku/antrian-go/internal/domain"
)

const ns = "antrian:v1"

// KeyGeneration counts committed changes to day. Snapshot keys embed it so a
// snapshot loaded before a change can never be served after it.
func KeyGeneration(day domain.Day) string {
	return fmt.Sprintf("%s:day:%s:gen", ns, day)
}

func KeyStatus(day domain.Day, gen int64) string {
	return fmt.Sprintf("%s:day:%s:g%d:status", ns, day, gen)
}

func KeyOverview(day domain.Day, gen int64) string {
	return fmt.Sprintf("%s:day:%s:g%d:overview", ns, day, gen)
}

func KeyTakeCooldown(clientID string) string {
	return fmt.Sprintf("%s:rl:take:%s", ns, clientID)
}

func KeyIdemTake(day domain.Day, idemKey string) string {
	return fmt.Sprintf("%s:idem:take:%s:%s", ns, day, idemKey)
}

func ChannelQueueChanged() string {
	return ns + ":queue:changed"
}
