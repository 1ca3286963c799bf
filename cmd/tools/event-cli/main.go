package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/annel0/arrow-physics/internal/auth"
	"github.com/annel0/arrow-physics/internal/eventbus"
	"github.com/annel0/arrow-physics/internal/journal"
	"github.com/annel0/arrow-physics/internal/projectile"
)

const (
	defaultNatsURL = "nats://127.0.0.1:4222"
	defaultStream  = "EVENTS"
)

func main() {
	var (
		command  = flag.String("cmd", "tail", "Command: tail, hits, stats, hashpw, secret")
		natsURL  = flag.String("nats", defaultNatsURL, "NATS server URL")
		stream   = flag.String("stream", defaultStream, "JetStream stream name")
		types    = flag.String("types", "", "Event types filter (comma-separated)")
		dataPath = flag.String("journal", "data", "Hit journal directory")
		from     = flag.Uint64("from", 0, "First tick (inclusive)")
		to       = flag.Uint64("to", ^uint64(0), "Last tick (inclusive)")
		limit    = flag.Int("limit", 100, "Maximum number of events; 0 - unlimited")
		password = flag.String("password", "", "Password for hashpw")
	)
	flag.Parse()

	switch *command {
	case "tail":
		if err := tailEvents(*natsURL, *stream, parseStringList(*types), *limit); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "hits":
		outcomes, err := readJournal(*dataPath, *from, *to)
		if err != nil {
			log.Fatalf("❌ Hits failed: %v", err)
		}
		if *limit > 0 && len(outcomes) > *limit {
			outcomes = outcomes[:*limit]
		}
		for _, o := range outcomes {
			fmt.Println(formatOutcome(o))
		}
		fmt.Printf("\n📊 Total hits: %d\n", len(outcomes))

	case "stats":
		outcomes, err := readJournal(*dataPath, *from, *to)
		if err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}
		printStats(os.Stdout, summarize(outcomes))

	case "hashpw":
		if *password == "" {
			log.Fatal("❌ -password is required")
		}
		hash, err := auth.HashPassword(*password)
		if err != nil {
			log.Fatalf("❌ Hash failed: %v", err)
		}
		fmt.Println(hash)

	case "secret":
		secret, err := auth.GenerateSecureSecret()
		if err != nil {
			log.Fatalf("❌ Secret failed: %v", err)
		}
		fmt.Println(secret)

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, hits, stats, hashpw, secret")
		os.Exit(1)
	}
}

// tailEvents выводит попадания из JetStream в реальном времени
func tailEvents(url, stream string, types []string, limit int) error {
	bus, err := eventbus.NewJetStreamBus(url, stream, 0)
	if err != nil {
		return err
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🎬 Tailing %s (limit: %d)\n", stream, limit)

	events := make(chan projectile.Outcome, 64)
	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: types}, func(ctx context.Context, ev *eventbus.Envelope) {
		o, err := eventbus.DecodeOutcome(ev)
		if err != nil {
			return
		}
		select {
		case events <- o:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	count := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\n📊 Total events: %d\n", count)
			return nil
		case o := <-events:
			fmt.Println(formatOutcome(o))
			count++
			if limit > 0 && count >= limit {
				fmt.Printf("\n📊 Total events: %d\n", count)
				return nil
			}
		}
	}
}

func readJournal(path string, from, to uint64) ([]projectile.Outcome, error) {
	if to < from {
		return nil, fmt.Errorf("invalid range: to %d < from %d", to, from)
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, err
	}
	defer j.Close()
	return j.Range(from, to)
}

// formatOutcome выводит исход попадания в читаемом формате
func formatOutcome(o projectile.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%6d] arrow=%d shooter=%d ", o.Tick, o.ProjectileID, o.ShooterID)
	switch o.Kind {
	case projectile.OutcomeBlock:
		fmt.Fprintf(&b, "block %s (%d,%d,%d)", o.BlockName, o.BlockPos.X, o.BlockPos.Y, o.BlockPos.Z)
		if o.Lodged {
			b.WriteString(" lodged")
		}
	default:
		fmt.Fprintf(&b, "actor=%d damage=%.2f", o.TargetID, o.Damage)
		if !o.Accepted {
			b.WriteString(" rejected")
		}
		if o.Ignited {
			b.WriteString(" 🔥")
		}
		if o.Piercing {
			b.WriteString(" pierce")
		}
	}
	return b.String()
}

// shooterStats - сводка попаданий одного стрелка
type shooterStats struct {
	Shooter   projectile.ActorID
	ActorHits int
	BlockHits int
	Damage    float64
}

type summary struct {
	ActorHits int
	BlockHits int
	Shooters  []shooterStats // по убыванию урона
}

// summarize сводит исходы по стрелкам
func summarize(outcomes []projectile.Outcome) summary {
	var s summary
	byShooter := make(map[projectile.ActorID]*shooterStats)
	for _, o := range outcomes {
		st, ok := byShooter[o.ShooterID]
		if !ok {
			st = &shooterStats{Shooter: o.ShooterID}
			byShooter[o.ShooterID] = st
		}
		if o.Kind == projectile.OutcomeBlock {
			s.BlockHits++
			st.BlockHits++
			continue
		}
		s.ActorHits++
		st.ActorHits++
		if o.Accepted {
			st.Damage += o.Damage
		}
	}

	for _, st := range byShooter {
		s.Shooters = append(s.Shooters, *st)
	}
	sort.Slice(s.Shooters, func(i, j int) bool {
		if s.Shooters[i].Damage != s.Shooters[j].Damage {
			return s.Shooters[i].Damage > s.Shooters[j].Damage
		}
		return s.Shooters[i].Shooter < s.Shooters[j].Shooter
	})
	return s
}

func printStats(w io.Writer, s summary) {
	fmt.Fprintln(w, "📊 Hit statistics")
	fmt.Fprintf(w, "Actor hits: %d\n", s.ActorHits)
	fmt.Fprintf(w, "Block hits: %d\n", s.BlockHits)
	fmt.Fprintln(w, "\nBy shooter:")
	for _, st := range s.Shooters {
		fmt.Fprintf(w, "  %d: actors=%d blocks=%d damage=%.2f\n", st.Shooter, st.ActorHits, st.BlockHits, st.Damage)
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
