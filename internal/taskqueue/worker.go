package taskqueue

import (
	"log"
	"sync"

	"github.com/hibiken/asynq"

	"home-monitor/internal/voice"
)

// The globals are written by the StartWorkers goroutine and read from the
// dispatch loop and button handlers; mu covers every access.
var (
	mu          sync.Mutex
	asynqClient *asynq.Client
	asynqSrv    *asynq.Server
	player      voice.Player
)

func client() *asynq.Client {
	mu.Lock()
	defer mu.Unlock()
	return asynqClient
}

func currentPlayer() voice.Player {
	mu.Lock()
	defer mu.Unlock()
	return player
}

// StartWorkers connects the asynq client and starts the announcement worker
// against the Redis instance at redisAddr. p receives the played text.
func StartWorkers(redisAddr string, p voice.Player) {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 2})

	mu.Lock()
	player = p
	asynqClient = asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	asynqSrv = srv
	mu.Unlock()

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAnnounce, handleAnnounce)

	log.Printf("TASKQUEUE: announcement workers started against %s", redisAddr)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("TASKQUEUE: failed to start workers: %v", err)
	}
}

// StopWorkers stops the worker and closes the client.
func StopWorkers() {
	mu.Lock()
	srv, cli := asynqSrv, asynqClient
	asynqSrv, asynqClient = nil, nil
	mu.Unlock()

	if srv != nil {
		srv.Stop()
	}
	if cli != nil {
		cli.Close()
	}
	log.Printf("TASKQUEUE: workers stopped")
}
