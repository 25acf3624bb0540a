package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
)

var errRedisCaido = errors.New("i/o timeout")

// fakeRedis answers the handful of commands the worker uses from memory.
// It is installed as a go-redis hook, so no command reaches the network.
type fakeRedis struct {
	mu    sync.Mutex
	keys  map[string]bool
	lists map[string][]string // index 0 is the head

	failLPush int // fail this many LPUSH calls, then succeed
	failRPop  int // fail the n-th RPOP call (1-based); 0 never
	rpops     int
}

func newFakeRedis(t *testing.T) (*fakeRedis, *redis.Client) {
	t.Helper()
	f := &fakeRedis{keys: map[string]bool{}, lists: map[string][]string{}}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(f)
	t.Cleanup(func() { _ = rdb.Close() })
	return f, rdb
}

func (f *fakeRedis) list(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lists[key]...)
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (f *fakeRedis) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		args := cmd.Args()
		key := fmt.Sprint(args[1])
		switch cmd.Name() {
		case "set": // only SET ... NX is used
			c := cmd.(*redis.BoolCmd)
			if f.keys[key] {
				c.SetVal(false)
				return nil
			}
			f.keys[key] = true
			c.SetVal(true)
		case "del":
			n := int64(0)
			if f.keys[key] {
				delete(f.keys, key)
				n = 1
			}
			cmd.(*redis.IntCmd).SetVal(n)
		case "lpush":
			c := cmd.(*redis.IntCmd)
			if f.failLPush > 0 {
				f.failLPush--
				c.SetErr(errRedisCaido)
				return errRedisCaido
			}
			for _, v := range args[2:] {
				f.lists[key] = append([]string{asString(v)}, f.lists[key]...)
			}
			c.SetVal(int64(len(f.lists[key])))
		case "rpop":
			c := cmd.(*redis.StringCmd)
			f.rpops++
			if f.rpops == f.failRPop {
				c.SetErr(errRedisCaido)
				return errRedisCaido
			}
			l := f.lists[key]
			if len(l) == 0 {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			f.lists[key] = l[:len(l)-1]
			c.SetVal(l[len(l)-1])
		case "llen":
			cmd.(*redis.IntCmd).SetVal(int64(len(f.lists[key])))
		default:
			err := fmt.Errorf("fakeRedis: unsupported command %q", cmd.Name())
			cmd.SetErr(err)
			return err
		}
		return nil
	}
}

func asString(v interface{}) string {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
