package brokerage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type OrderIDGeneratorTestSuite struct {
	suite.Suite
}

func TestOrderIDGeneratorSuite(t *testing.T) {
	suite.Run(t, new(OrderIDGeneratorTestSuite))
}

func (suite *OrderIDGeneratorTestSuite) TestSequential() {
	generator := NewOrderIDGenerator(0)
	suite.Equal(int64(1), generator.Next())
	suite.Equal(int64(2), generator.Next())
	suite.Equal(int64(2), generator.Last())
}

func (suite *OrderIDGeneratorTestSuite) TestGeneratorsAreIndependent() {
	a := NewOrderIDGenerator(0)
	b := NewOrderIDGenerator(100)

	a.Next()
	suite.Equal(int64(101), b.Next())
	suite.Equal(int64(2), a.Next())
}

func (suite *OrderIDGeneratorTestSuite) TestConcurrentIDsAreUnique() {
	generator := NewOrderIDGenerator(0)
	ids := make(chan int64, 1000)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				ids <- generator.Next()
			}
		}()
	}

	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{})
	for id := range ids {
		seen[id] = struct{}{}
	}

	suite.Len(seen, 1000)
	suite.Equal(int64(1000), generator.Last())
}
