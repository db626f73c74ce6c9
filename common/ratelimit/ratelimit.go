package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

//Bucket is a token bucket holding at most maxTok tokens and refilling one token every perTok
type Bucket struct {
	limiter *rate.Limiter
}

func NewBucket(maxTok int, perTok time.Duration) Bucket {
	return Bucket{limiter: rate.NewLimiter(rate.Every(perTok), maxTok)}
}

//NewDrop returns whether or not the request can be fulfilled (i.e. it returns true if there is no overflow)
func (b Bucket) NewDrop() bool {
	return b.newDropAt(time.Now())
}

func (b Bucket) newDropAt(now time.Time) bool {
	return b.limiter.AllowN(now, 1)
}

type lruNode struct {
	mapKey     string
	moreRecent *lruNode
	lessRecent *lruNode
	bucket     Bucket
}

type Config struct {
	UserCacheSize int `yaml:"user_cache_size"`

	GlobalMaxTokens int           `yaml:"global_max_tokens"`
	GlobalPerToken  time.Duration `yaml:"global_per_token"`

	UserMaxTokens int           `yaml:"user_max_tokens"`
	UserPerToken  time.Duration `yaml:"user_per_token"`
}

//RateLimiter keeps a global bucket plus one bucket per key. Only the most recently seen UserCacheSize keys keep their bucket
type RateLimiter struct {
	mutex sync.Mutex

	config         Config
	globalBucket   Bucket
	lruMostRecent  *lruNode
	lruLeastRecent *lruNode
	lruMap         map[string]*lruNode
}

func NewRateLimiter(config Config) *RateLimiter {
	if config.UserCacheSize <= 0 {
		config.UserCacheSize = 1
	}

	return &RateLimiter{
		config:       config,
		globalBucket: NewBucket(config.GlobalMaxTokens, config.GlobalPerToken),
		lruMap:       make(map[string]*lruNode),
	}
}

func (r *RateLimiter) get(idx string) *lruNode {
	l, ok := r.lruMap[idx]
	if !ok {
		return nil
	}

	//node exists, yank it out
	if l.moreRecent != nil {
		l.moreRecent.lessRecent = l.lessRecent
	}

	if l.lessRecent != nil {
		l.lessRecent.moreRecent = l.moreRecent
	}

	if r.lruLeastRecent == l {
		r.lruLeastRecent = l.moreRecent
	}

	if r.lruMostRecent == l {
		r.lruMostRecent = l.lessRecent
	}

	l.moreRecent = nil
	l.lessRecent = nil

	//the node is now free standing, emplace it back to the front
	if r.lruMostRecent != nil {
		r.lruMostRecent.moreRecent = l
		l.lessRecent = r.lruMostRecent
	}
	r.lruMostRecent = l

	if r.lruLeastRecent == nil {
		r.lruLeastRecent = l
	}

	return l
}

func (r *RateLimiter) getOrEmplace(idx string) *lruNode {
	if l := r.get(idx); l != nil {
		return l
	}

	newNode := &lruNode{
		mapKey: idx,
		bucket: NewBucket(r.config.UserMaxTokens, r.config.UserPerToken),
	}

	if r.lruMostRecent != nil {
		r.lruMostRecent.moreRecent = newNode
		newNode.lessRecent = r.lruMostRecent
	}
	r.lruMostRecent = newNode

	if r.lruLeastRecent == nil {
		r.lruLeastRecent = newNode
	}

	r.lruMap[idx] = newNode

	if len(r.lruMap) > r.config.UserCacheSize {
		key := r.lruLeastRecent.mapKey
		r.lruLeastRecent = r.lruLeastRecent.moreRecent
		r.lruLeastRecent.lessRecent = nil
		delete(r.lruMap, key)
	}

	return newNode
}

func (r *RateLimiter) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return len(r.lruMap)
}

//Check consumes a token from the global bucket and from key's bucket
func (r *RateLimiter) Check(key string) bool {
	return r.checkAt(key, time.Now())
}

func (r *RateLimiter) checkAt(key string, now time.Time) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.globalBucket.newDropAt(now) {
		return false
	}

	return r.getOrEmplace(key).bucket.newDropAt(now)
}
