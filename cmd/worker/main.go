package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/pulsehustle/pulsehustle/internal/audit"
	"github.com/pulsehustle/pulsehustle/internal/config"
	"github.com/pulsehustle/pulsehustle/internal/db"
	"github.com/pulsehustle/pulsehustle/internal/gig"
	"github.com/pulsehustle/pulsehustle/internal/matching"
	"github.com/pulsehustle/pulsehustle/internal/profile"
	"github.com/pulsehustle/pulsehustle/internal/store/rabbitmq"
)

type jobMsg struct {
	JobID string `json:"job_id"`
}

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	auditLog := audit.NewLogger(gdb)
	svc := matching.NewService(
		matching.NewRepo(gdb),
		gig.NewRepo(gdb),
		profile.NewRepo(gdb),
		matching.NewRandomScorer(),
		nil, // the worker consumes; it never dispatches
		auditLog,
		nil,
	)

	if cfg.RabbitURL == "" {
		log.Fatalf("RABBIT_URL is required for the worker")
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	// shared topology: arguments must match the publisher's or the
	// broker rejects the declaration
	if err := rabbitmq.Declare(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m jobMsg
				if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := svc.ProcessJob(ctx, m.JobID); err != nil {
					attempt := rabbitmq.RetryCount(d.Headers)
					log.Printf("worker=%d job %s failed attempt=%d cost=%s err=%v", workerID, m.JobID, attempt, time.Since(start), err)

					if attempt < rabbitmq.MaxRetries {
						if rErr := rabbitmq.Requeue(ctx, ch, cfg.RabbitQueue, d); rErr == nil {
							_ = d.Ack(false)
							continue
						} else {
							log.Printf("worker=%d requeue job %s: %v", workerID, m.JobID, rErr)
						}
					}
					// retries exhausted (or requeue failed): park in the DLQ
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed job=%s err=%v", workerID, m.JobID, err)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}
