package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"
	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/signature"
	"github.com/minichain/minichain/foundation/blockchain/state"
	"github.com/minichain/minichain/foundation/events"
	"github.com/minichain/minichain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("SIMULATOR")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Sim struct {
			Nodes         int `conf:"default:3"`
			Rounds        int `conf:"default:6"`
			BlockCapacity int `conf:"default:10"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "in-process peer network simulation",
		},
	}

	const prefix = "SIM"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting simulation", "version", build)
	defer log.Infow("simulation complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Event Support

	// The blockchain packages accept a function of this signature to allow
	// the application to log. The raw messages are also published so any
	// registered observer can watch the chain activity.
	evts := events.New()
	defer evts.Shutdown()

	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s)
		evts.Publish(s)
	}

	// Count chain adoptions across the whole simulation.
	obsID := uuid.NewString()
	obs := evts.Subscribe(obsID)
	obsDone := make(chan int)
	go func() {
		var adoptions int
		for s := range obs {
			if strings.Contains(s, "adopted") {
				adoptions++
			}
		}
		obsDone <- adoptions
	}()

	// =========================================================================
	// Network Startup

	gen := genesis.Genesis{
		BlockCapacity: cfg.Sim.BlockCapacity,
		PrevBlockHash: signature.ZeroHash,
	}

	nodes := make([]*state.State, cfg.Sim.Nodes)
	for i := range nodes {
		node, err := state.New(state.Config{Genesis: gen, EvHandler: ev})
		if err != nil {
			return fmt.Errorf("constructing node %d: %w", i, err)
		}
		nodes[i] = node
		log.Infow("startup", "node", i, "address", node.Address())
	}

	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if err := nodes[i].Connect(nodes[j]); err != nil {
				return fmt.Errorf("connecting node %d to node %d: %w", i, j, err)
			}
		}
	}

	// =========================================================================
	// Mining And Transfer Rounds

	for round := 0; round < cfg.Sim.Rounds; round++ {
		miner := nodes[round%len(nodes)]
		miner.MineBlock()

		from := nodes[rand.IntN(len(nodes))]
		to := nodes[rand.IntN(len(nodes))]
		if from == to {
			continue
		}
		if _, err := from.CreateTransaction(to.Address()); err != nil {
			log.Infow("transfer skipped", "from", from.Address(), "ERROR", err)
		}
	}

	// One final block to settle any pending transfers.
	nodes[0].MineBlock()

	// =========================================================================
	// Fork And Heal

	// Two isolated nodes mine competing chains of different lengths. On
	// connection the shorter side must reorganize onto the longer chain.
	a, err := state.New(state.Config{Genesis: gen, EvHandler: ev})
	if err != nil {
		return fmt.Errorf("constructing fork node a: %w", err)
	}
	b, err := state.New(state.Config{Genesis: gen, EvHandler: ev})
	if err != nil {
		return fmt.Errorf("constructing fork node b: %w", err)
	}

	a.MineBlock()
	a.MineBlock()
	b.MineBlock()

	if err := a.Connect(b); err != nil {
		return fmt.Errorf("connecting fork nodes: %w", err)
	}
	if a.LatestHash() != b.LatestHash() {
		return fmt.Errorf("fork did not heal: a[%s] b[%s]", a.LatestHash(), b.LatestHash())
	}
	log.Infow("fork healed", "tip", a.LatestHash())

	// =========================================================================
	// Final State

	tip := nodes[0].LatestHash()
	for i, node := range nodes[1:] {
		if node.LatestHash() != tip {
			return fmt.Errorf("node %d diverged: got %s, exp %s", i+1, node.LatestHash(), tip)
		}
	}

	for i, node := range nodes {
		log.Infow("final state", "node", i, "balance", node.Balance(), "blocks", len(node.Chain()), "mempool", len(node.Mempool()))
	}

	if err := evts.Unsubscribe(obsID); err != nil {
		return fmt.Errorf("unsubscribing observer: %w", err)
	}
	log.Infow("chain adoptions", "count", <-obsDone)

	return nil
}
