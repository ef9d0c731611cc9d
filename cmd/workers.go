/*
Copyright 2026 Vermillion Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/internal/notification"
	redis_db "github.com/vermillionhq/vermillion/internal/redis-db"
	"github.com/vermillionhq/vermillion/model"
)

// processReconciliation replays the ledger movement for a transaction the
// provider already settled. Errors trigger asynq's retry with backoff;
// when retries are exhausted the operator channels are notified and the
// transaction stays UNRECONCILED for manual review.
func (v *vermillionInstance) processReconciliation(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("vermillion.reconciliation.worker").Start(ctx, "Process Reconciliation From Redis Queue")
	defer span.End()

	var txn model.Transaction
	if err := json.Unmarshal(t.Payload(), &txn); err != nil {
		logrus.Error(err)
		return err
	}

	if err := v.vermillion.ReconcileSettlement(ctx, &txn); err != nil {
		cfg, _ := config.Fetch()
		retryCount, _ := asynq.GetRetryCount(ctx)
		if retryCount >= cfg.Queue.MaxRetryAttempts {
			notification.NotifyError(fmt.Errorf("reconciliation for transaction %s exhausted %d attempts: %v",
				txn.TransactionID, retryCount, err))
			_ = notification.WebhookNotification("transaction.unreconciled", txn)
			return nil
		}

		logrus.Infof("Reconciliation for %s pushed back for retry attempt %d/%d: %v",
			txn.TransactionID, retryCount, cfg.Queue.MaxRetryAttempts, err)
		return err
	}

	log.Println(" [*] Transaction Reconciled", txn.TransactionID)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.ReconciliationQueue] = 3
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(v *vermillionInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.ReconciliationQueue, v.processReconciliation)
}

// workerCommands defines the "workers" command that drains the
// reconciliation queue.
func workerCommands(v *vermillionInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start vermillion workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			shutdown, err := initializeTracing(ctx)
			if err != nil {
				log.Printf("Tracing initialization error: %v", err)
			}
			if shutdown != nil {
				defer func() {
					if err := shutdown(ctx); err != nil {
						log.Printf("Error during shutdown: %v", err)
					}
				}()
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(v, mux)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
