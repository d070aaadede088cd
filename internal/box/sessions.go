package box

// sessionCache maps identifiers to live sessions. It is not synchronised;
// the owning Box holds its mutex around every call.
type sessionCache struct {
	m map[string]*Session
}

func newSessionCache() *sessionCache {
	return &sessionCache{m: make(map[string]*Session)}
}

func (c *sessionCache) get(id string) (*Session, bool) {
	s, ok := c.m[id]
	return s, ok
}

// getOrCreate returns the session for id, calling create only when none is
// cached. A failed create leaves the cache untouched.
func (c *sessionCache) getOrCreate(id string, create func() (*Session, error)) (s *Session, created bool, err error) {
	if s, ok := c.m[id]; ok {
		return s, false, nil
	}
	s, err = create()
	if err != nil {
		return nil, false, err
	}
	c.m[id] = s
	return s, true, nil
}

// remove evicts s if it is the session cached under its identifier.
func (c *sessionCache) remove(s *Session) bool {
	if cur, ok := c.m[s.id]; ok && cur == s {
		delete(c.m, s.id)
		return true
	}
	return false
}

// drain empties the cache and returns what it held.
func (c *sessionCache) drain() []*Session {
	out := make([]*Session, 0, len(c.m))
	for id, s := range c.m {
		out = append(out, s)
		delete(c.m, id)
	}
	return out
}

func (c *sessionCache) len() int { return len(c.m) }
