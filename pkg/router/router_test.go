package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akone/pkg/core"
)

// mockSource 用于测试的可编程数据源
type mockSource struct {
	name  string
	fetch func(ctx context.Context, method string, params core.Params) (*core.Table, error)

	mu    sync.Mutex
	calls int
}

func (m *mockSource) Name() string {
	return m.name
}

func (m *mockSource) Fetch(ctx context.Context, method string, params core.Params) (*core.Table, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fetch(ctx, method, params)
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// okSource 返回固定单行表格的数据源
func okSource(name string, columns ...string) *mockSource {
	return &mockSource{
		name: name,
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			table := core.NewTable(columns...)
			values := make([]any, len(columns))
			for i := range values {
				values[i] = 1.0
			}
			table.AppendRow(values...)
			return table, nil
		},
	}
}

// failSource 始终返回指定错误的数据源
func failSource(name, message string) *mockSource {
	return &mockSource{
		name: name,
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			return nil, errors.New(message)
		},
	}
}

func reg(sources ...*mockSource) []Registration {
	regs := make([]Registration, len(sources))
	for i, s := range sources {
		regs[i] = Registration{Source: s.name, Provider: s}
	}
	return regs
}

func TestExecute_FirstSourceWins(t *testing.T) {
	a := okSource("a", "x")
	b := okSource("b", "x")
	r := New(reg(a, b), nil)

	table, err := r.Execute(context.Background(), core.MethodHistData, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	// 首个源胜出后，后续源完全不被调用
	assert.Equal(t, 1, a.callCount())
	assert.Equal(t, 0, b.callCount())
}

func TestExecuteWithResult_Failover(t *testing.T) {
	a := failSource("a", "timeout")
	b := okSource("b", "x")
	r := New(reg(a, b), nil)

	res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	require.True(t, res.Success)
	assert.Equal(t, "b", res.Source)
	assert.Equal(t, 2, res.Attempts)
	assert.Empty(t, res.Error)
	require.Len(t, res.ErrorDetails, 1)
	assert.Equal(t, "a", res.ErrorDetails[0].Source)
	assert.Equal(t, "timeout", res.ErrorDetails[0].Message)
}

func TestExecuteWithResult_EmptyTableFailover(t *testing.T) {
	a := &mockSource{
		name: "a",
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			return core.NewTable("x"), nil // 零行表格
		},
	}
	b := okSource("b", "x")
	r := New(reg(a, b), nil)

	res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	require.True(t, res.Success)
	assert.Equal(t, "b", res.Source)
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, res.ErrorDetails, 1)
	// 未抛错但结果为空时，失败消息要和调用出错区分开
	assert.Equal(t, "empty result", res.ErrorDetails[0].Message)
}

func TestExecuteWithResult_AllFail(t *testing.T) {
	a := failSource("a", "E1")
	b := failSource("b", "E2")
	r := New(reg(a, b), nil)

	res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	require.False(t, res.Success)
	assert.Nil(t, res.Data)
	assert.Empty(t, res.Source)
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, res.ErrorDetails, 2)
	assert.Equal(t, ErrorDetail{Source: "a", Message: "E1"}, res.ErrorDetails[0])
	assert.Equal(t, ErrorDetail{Source: "b", Message: "E2"}, res.ErrorDetails[1])
	assert.Contains(t, res.Error, "E1")
	assert.Contains(t, res.Error, "E2")
}

func TestExecute_AllFailError(t *testing.T) {
	r := New(reg(failSource("a", "E1"), failSource("b", "E2")), nil)

	_, err := r.Execute(context.Background(), core.MethodHistData, nil)
	require.Error(t, err)

	var allFailed *AllSourcesFailedError
	require.True(t, errors.As(err, &allFailed))
	assert.Equal(t, core.MethodHistData, allFailed.Method)

	// 错误文本中必须出现每个源的名称和失败原因
	msg := err.Error()
	assert.Contains(t, msg, "all data sources failed")
	assert.Contains(t, msg, core.MethodHistData)
	for _, want := range []string{"a", "b", "E1", "E2"} {
		assert.Contains(t, msg, want)
	}
}

func TestExecute_RequiredColumnsGating(t *testing.T) {
	// a 返回的表格非空但缺少 close 列，应视为失败并转向 b
	a := okSource("a", "timestamp")
	b := okSource("b", "timestamp", "close")
	r := New(reg(a, b), &Config{RequiredColumns: []string{"timestamp", "close"}})

	res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	require.True(t, res.Success)
	assert.Equal(t, "b", res.Source)
	require.Len(t, res.ErrorDetails, 1)
	assert.Contains(t, res.ErrorDetails[0].Message, "missing required columns")
	assert.Contains(t, res.ErrorDetails[0].Message, "close")
}

func TestExecute_MinRowsGating(t *testing.T) {
	a := okSource("a", "x") // 单行
	b := &mockSource{
		name: "b",
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			table := core.NewTable("x")
			for i := 0; i < 5; i++ {
				table.AppendRow(float64(i))
			}
			return table, nil
		},
	}
	r := New(reg(a, b), &Config{MinRows: 3})

	res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	require.True(t, res.Success)
	assert.Equal(t, "b", res.Source)
	require.Len(t, res.ErrorDetails, 1)
	assert.Contains(t, res.ErrorDetails[0].Message, "insufficient rows")
}

func TestExecute_NullColumnsStillValid(t *testing.T) {
	// 列存在但内容全空的表格在路由层仍视为有效
	a := &mockSource{
		name: "a",
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			table := core.NewTable("timestamp", "close")
			table.AppendRow(nil, nil)
			return table, nil
		},
	}
	r := New(reg(a), &Config{RequiredColumns: []string{"timestamp", "close"}, MinRows: 1})

	res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	require.True(t, res.Success)
	assert.Equal(t, "a", res.Source)
}

func TestExecuteWithResult_MethodNotSupported(t *testing.T) {
	a := &mockSource{
		name: "a",
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			return nil, fmt.Errorf("%w: %s", core.ErrMethodNotSupported, method)
		},
	}
	b := okSource("b", "x")
	r := New(reg(a, b), nil)

	res := r.ExecuteWithResult(context.Background(), core.MethodRealtimeData, nil)
	require.True(t, res.Success)
	assert.Equal(t, "b", res.Source)
	require.Len(t, res.ErrorDetails, 1)
	assert.Contains(t, res.ErrorDetails[0].Message, "method not supported")
}

func TestExecuteWithResult_PanicRecovered(t *testing.T) {
	a := &mockSource{
		name: "a",
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			panic("boom")
		},
	}
	b := okSource("b", "x")
	r := New(reg(a, b), nil)

	res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	require.True(t, res.Success)
	assert.Equal(t, "b", res.Source)
	require.Len(t, res.ErrorDetails, 1)
	assert.Contains(t, res.ErrorDetails[0].Message, "panic")
}

func TestExecuteWithFallback(t *testing.T) {
	// a 只认备选方法名，b 两个都不认
	a := &mockSource{
		name: "a",
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			if method != "get_quote" {
				return nil, fmt.Errorf("%w: %s", core.ErrMethodNotSupported, method)
			}
			table := core.NewTable("x")
			table.AppendRow(1.0)
			return table, nil
		},
	}
	r := New(reg(a), nil)

	table, err := r.ExecuteWithFallback(context.Background(), core.MethodRealtimeData, "get_quote", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	// 备选调用仍只计入同一次尝试
	assert.Equal(t, 2, a.callCount())

	stats := r.GetStats()
	assert.Equal(t, SourceStats{Success: 1}, stats["a"])
}

func TestExecuteWithResult_ErrorTruncated(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "abcdef"
	}
	r := New(reg(failSource("a", long)), nil)

	res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	require.False(t, res.Success)
	assert.Len(t, []rune(res.ErrorDetails[0].Message), maxErrorLen)
}

func TestAttemptTimeout(t *testing.T) {
	slow := &mockSource{
		name: "slow",
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
				return core.NewTable("x"), nil
			}
		},
	}
	fast := okSource("fast", "x")
	r := New(reg(slow, fast), &Config{AttemptTimeout: 20 * time.Millisecond})

	start := time.Now()
	res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	require.True(t, res.Success)
	assert.Equal(t, "fast", res.Source)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, res.ErrorDetails, 1)
	assert.Contains(t, res.ErrorDetails[0].Message, "deadline exceeded")
}

func TestStatsAccounting(t *testing.T) {
	x := failSource("x", "down")
	y := okSource("y", "a")
	r := New(reg(x, y), nil)

	const k = 7
	for i := 0; i < k; i++ {
		_, err := r.Execute(context.Background(), core.MethodHistData, nil)
		require.NoError(t, err)
	}

	stats := r.GetStats()
	assert.Equal(t, SourceStats{Success: 0, Failure: k}, stats["x"])
	assert.Equal(t, SourceStats{Success: k, Failure: 0}, stats["y"])

	// 快照是副本，修改不影响内部计数
	stats["y"] = SourceStats{}
	assert.Equal(t, SourceStats{Success: k}, r.GetStats()["y"])
}

func TestStats_IndependentRouters(t *testing.T) {
	a1 := okSource("a", "x")
	a2 := okSource("a", "x")
	r1 := New(reg(a1), nil)
	r2 := New(reg(a2), nil)

	r1.Execute(context.Background(), core.MethodHistData, nil)

	assert.Equal(t, SourceStats{Success: 1}, r1.GetStats()["a"])
	assert.Empty(t, r2.GetStats())
}

func TestStats_ConcurrentCallers(t *testing.T) {
	a := failSource("a", "down")
	b := okSource("b", "x")
	r := New(reg(a, b), &Config{EnableLogging: false})

	const goroutines = 16
	const perGoroutine = 25

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				res := r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
				if !res.Success {
					t.Error("unexpected failure")
					return
				}
			}
		}()
	}
	wg.Wait()

	total := int64(goroutines * perGoroutine)
	stats := r.GetStats()
	assert.Equal(t, SourceStats{Failure: total}, stats["a"])
	assert.Equal(t, SourceStats{Success: total}, stats["b"])
}

func TestRegistrationOrderPreserved(t *testing.T) {
	var order []string
	mk := func(name string) *mockSource {
		return &mockSource{
			name: name,
			fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
				order = append(order, name)
				return nil, errors.New("down")
			},
		}
	}
	r := New(reg(mk("c"), mk("a"), mk("b")), nil)

	// 每次调用都从第一个源重新开始，顺序恒等于注册顺序
	r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	r.ExecuteWithResult(context.Background(), core.MethodHistData, nil)
	assert.Equal(t, []string{"c", "a", "b", "c", "a", "b"}, order)
	assert.Equal(t, []string{"c", "a", "b"}, r.Sources())
}

func TestParamsPassedThrough(t *testing.T) {
	var got core.Params
	a := &mockSource{
		name: "a",
		fetch: func(ctx context.Context, method string, params core.Params) (*core.Table, error) {
			got = params
			table := core.NewTable("x")
			table.AppendRow(1.0)
			return table, nil
		},
	}
	r := New(reg(a), nil)

	params := core.Params{"symbol": "600000", "adjust": "qfq"}
	_, err := r.Execute(context.Background(), core.MethodHistData, params)
	require.NoError(t, err)
	assert.Equal(t, "600000", got.String("symbol"))
	assert.Equal(t, "qfq", got.String("adjust"))
}
