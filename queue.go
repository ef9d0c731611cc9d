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

package vermillion

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vermillionhq/vermillion/config"
	redis_db "github.com/vermillionhq/vermillion/internal/redis-db"
	"github.com/vermillionhq/vermillion/model"
)

// Queue hands settled-but-unreconciled transactions to the background
// worker that retries their ledger movements.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// EnqueueReconciliation schedules a retry of the ledger movement for a
// transaction the provider already settled. The task id is the
// transaction id, so re-flagging the same transaction does not enqueue a
// second task.
func (q *Queue) EnqueueReconciliation(ctx context.Context, txn *model.Transaction) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := txn.ToJSON()
	if err != nil {
		return err
	}

	taskOptions := []asynq.Option{
		asynq.TaskID(txn.TransactionID),
		asynq.Queue(cfg.Queue.ReconciliationQueue),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
		asynq.ProcessIn(30 * time.Second),
	}
	task := asynq.NewTask(cfg.Queue.ReconciliationQueue, payload, taskOptions...)
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued reconciliation: %+v", txn.TransactionID)
	return nil
}
