package page

import "fmt"

// Chain is a doubly linked list of pages drawn from one Pool.
type Chain struct {
	pool *Pool
	head ID
	tail ID
	n    int
}

// NewChain returns an empty chain backed by pool.
func NewChain(pool *Pool) *Chain {
	return &Chain{pool: pool}
}

// Len returns the number of linked pages.
func (c *Chain) Len() int { return c.n }

// Head returns the first page, or Nil.
func (c *Chain) Head() ID { return c.head }

// Tail returns the last page, or Nil.
func (c *Chain) Tail() ID { return c.tail }

// PageBits returns the capacity of one page in bits.
func (c *Chain) PageBits() uint64 { return c.pool.PageBits() }

// Capacity returns the capacity of all linked pages in bits.
func (c *Chain) Capacity() uint64 { return uint64(c.n) * c.pool.PageBits() }

// Next returns the page after id, or Nil.
func (c *Chain) Next(id ID) ID { return c.pool.page(id).next }

// Prev returns the page before id, or Nil.
func (c *Chain) Prev(id ID) ID { return c.pool.page(id).prev }

// Bytes returns the buffer of page id.
func (c *Chain) Bytes(id ID) []byte { return c.pool.Bytes(id) }

// PushBack acquires a page and links it at the tail.
func (c *Chain) PushBack() (ID, error) {
	id, err := c.pool.Acquire()
	if err != nil {
		return Nil, err
	}

	pg := c.pool.page(id)
	pg.prev = c.tail
	if c.tail.IsNil() {
		c.head = id
	} else {
		c.pool.page(c.tail).next = id
	}
	c.tail = id
	c.n++
	return id, nil
}

// Reserve grows the chain until it holds at least bits bits.
// Either every needed page is linked or, on failure, none of the pages
// acquired by this call remain linked.
func (c *Chain) Reserve(bits uint64) error {
	pageBits := c.pool.PageBits()
	need := int((bits + pageBits - 1) / pageBits) //nolint:gosec // bounded by pool limits
	added := 0
	for c.n < need {
		if _, err := c.PushBack(); err != nil {
			for range added {
				c.PopBack()
			}
			return err
		}
		added++
	}
	return nil
}

// PopFront unlinks the head page and releases it to the pool.
func (c *Chain) PopFront() {
	if c.head.IsNil() {
		panic("page: pop from empty chain")
	}
	id := c.head
	pg := c.pool.page(id)
	c.head = pg.next
	if c.head.IsNil() {
		c.tail = Nil
	} else {
		c.pool.page(c.head).prev = Nil
	}
	pg.next = Nil
	c.n--
	c.pool.Release(id)
}

// PopBack unlinks the tail page and releases it to the pool.
func (c *Chain) PopBack() {
	if c.tail.IsNil() {
		panic("page: pop from empty chain")
	}
	id := c.tail
	pg := c.pool.page(id)
	c.tail = pg.prev
	if c.tail.IsNil() {
		c.head = Nil
	} else {
		c.pool.page(c.tail).next = Nil
	}
	pg.prev = Nil
	c.n--
	c.pool.Release(id)
}

// TrimFront releases the first n pages.
func (c *Chain) TrimFront(n int) {
	if n > c.n {
		panic(fmt.Sprintf("page: trim %d of %d pages", n, c.n))
	}
	for range n {
		c.PopFront()
	}
}

// Shrink releases tail pages that are not needed to hold bits bits.
func (c *Chain) Shrink(bits uint64) {
	pageBits := c.pool.PageBits()
	keep := int((bits + pageBits - 1) / pageBits) //nolint:gosec // bounded by chain length
	for c.n > keep {
		c.PopBack()
	}
}

// Reset releases every page.
func (c *Chain) Reset() {
	for c.n > 0 {
		c.PopBack()
	}
}

// Page returns the i-th page (0 = head) by walking the links.
func (c *Chain) Page(i int) ID {
	if i < 0 || i >= c.n {
		panic(fmt.Sprintf("page: index %d out of range [0, %d)", i, c.n))
	}
	if i <= c.n/2 {
		id := c.head
		for range i {
			id = c.Next(id)
		}
		return id
	}
	id := c.tail
	for range c.n - 1 - i {
		id = c.Prev(id)
	}
	return id
}
