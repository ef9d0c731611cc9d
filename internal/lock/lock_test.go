package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestLock_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "holder-1")

	mock.ExpectSetNX("test-key", "holder-1", time.Minute).SetVal(true)

	err := locker.Lock(context.Background(), time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_AlreadyHeld(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "holder-1")

	mock.ExpectSetNX("test-key", "holder-1", time.Minute).SetVal(false)

	err := locker.Lock(context.Background(), time.Minute)
	assert.EqualError(t, err, "lock for key test-key is already held")
}

func TestUnlock_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "holder-1")

	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"
	mock.ExpectEval(script, []string{"test-key"}, "holder-1").SetVal(int64(1))

	err := locker.Unlock(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnlock_NotHolder(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "holder-1")

	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"
	mock.ExpectEval(script, []string{"test-key"}, "holder-1").SetVal(int64(0))

	err := locker.Unlock(context.Background())
	assert.EqualError(t, err, "unlock failed, either lock expired or you're not the lock holder for key test-key")
}

func TestExtendLock_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "holder-1")

	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('pexpire', KEYS[1], ARGV[2]) else return 0 end"
	mock.ExpectEval(script, []string{"test-key"}, "holder-1", "30000").SetVal(int64(1))

	err := locker.ExtendLock(context.Background(), 30*time.Second)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtendLock_Expired(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "holder-1")

	script := "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('pexpire', KEYS[1], ARGV[2]) else return 0 end"
	mock.ExpectEval(script, []string{"test-key"}, "holder-1", "30000").SetVal(int64(0))

	err := locker.ExtendLock(context.Background(), 30*time.Second)
	assert.EqualError(t, err, "lock extension failed for key test-key, either lock expired or you're not the holder")
}

func TestWaitLock_AcquiresAfterRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	locker := NewLocker(db, "test-key", "holder-1")

	mock.ExpectSetNX("test-key", "holder-1", time.Minute).SetVal(false)
	mock.ExpectSetNX("test-key", "holder-1", time.Minute).SetVal(true)

	err := locker.WaitLock(context.Background(), time.Minute, time.Second)
	assert.NoError(t, err)
}
