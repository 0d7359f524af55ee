package xaop

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xaop/pkg/observability/xmetrics"
)

// RuntimeError 测试用的业务错误类型。
type RuntimeError struct {
	msg string
}

func (e *RuntimeError) Error() string { return e.msg }

func TestAround_VoidSuccess(t *testing.T) {
	sink := newRecordingSink(LevelTrace)
	e := newTestEngine(t, sink)

	err := AroundErr(context.Background(), e, nil, fooInvocation(), func(context.Context) error {
		return nil
	})
	require.NoError(t, err)

	msgs := sink.messages()
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "Entering [void foo()] with parameters [none]")
	assert.Contains(t, msgs[1], "elapsed [")
	assert.Equal(t, "[void foo()] elapsed [1.5s]", msgs[1])
	assert.Contains(t, msgs[2], "exited normally with return value [none]")

	for _, en := range sink.all() {
		assert.Equal(t, "com.example.Demo", en.category)
		assert.Equal(t, LevelDebug, en.level)
		assert.NoError(t, en.err)
	}
}

func TestAround_VoidFailure(t *testing.T) {
	sink := newRecordingSink(LevelTrace)
	e := newTestEngine(t, sink)
	boom := &RuntimeError{msg: "foo"}

	err := AroundErr(context.Background(), e, nil, fooInvocation(), func(context.Context) error {
		return boom
	})
	assert.Same(t, boom, err)

	entries := sink.all()
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0].msg, "Entering [void foo()] with parameters [none]")
	assert.Contains(t, entries[1].msg, "elapsed [")
	assert.Contains(t, entries[2].msg, "exited abnormally with exception [type=RuntimeError, message=foo]")
	assert.Equal(t, LevelError, entries[2].level)
	assert.Same(t, boom, entries[2].err)
}

func TestAround_ReturnValueAndArgs(t *testing.T) {
	sink := newRecordingSink(LevelTrace)
	e := newTestEngine(t, sink)
	inv := &Invocation{
		Signature: SignatureOf("order.Service", "Create", func(context.Context, string, int) (string, error) { return "", nil }),
		Args:      []Arg{{Name: "sku", Value: "A-1"}, {Value: 3}},
	}
	site := NewCallSite(
		WithEnteringMessage("{method} sku={sku} qty={arg1} id={invocation-id}"),
		WithExitedMessage("{category} -> {return-value} id={invocation-id}"),
	)

	got, err := Around(context.Background(), e, site, inv, func(context.Context) (string, error) {
		return "order-42", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "order-42", got)

	msgs := sink.messages()
	require.Len(t, msgs, 3)
	assert.Regexp(t, `^string Create\(string, int\) sku=A-1 qty=3 id=[0-9a-f-]{36}$`, msgs[0])
	assert.Regexp(t, `^order\.Service -> order-42 id=[0-9a-f-]{36}$`, msgs[2])
	assert.Equal(t, msgs[0][len(msgs[0])-36:], msgs[2][len(msgs[2])-36:], "同一调用共享 invocation-id")
}

func TestAround_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)
	// 全局关闭时 Sink 不应被调用
	sink.EXPECT().Enabled(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	cfg := DefaultConfig()
	cfg.Enabled = false
	e := newTestEngine(t, sink, WithConfig(cfg))

	got, err := Around(context.Background(), e, nil, fooInvocation(), func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	boom := errors.New("boom")
	_, err = Around(context.Background(), e, nil, fooInvocation(), func(context.Context) (int, error) {
		return 0, boom
	})
	assert.Same(t, boom, err)
}

func TestAround_NilEngine(t *testing.T) {
	got, err := Around(context.Background(), nil, nil, nil, func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestAround_LevelDisabledIsLazy(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)
	sink.EXPECT().Enabled(gomock.Any(), "com.example.Demo", LevelDebug).Return(false).AnyTimes()
	sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	e := newTestEngine(t, sink)
	arg := &countingStringer{value: "expensive"}
	inv := fooInvocation()
	inv.Args = []Arg{{Name: "payload", Value: arg}}

	_, err := Around(context.Background(), e, nil, inv, func(context.Context) (*countingStringer, error) {
		return arg, nil
	})
	require.NoError(t, err)
	assert.Zero(t, arg.count())
}

func TestAround_IgnoredErrorStillPropagates(t *testing.T) {
	sink := newRecordingSink(LevelTrace)
	e := newTestEngine(t, sink)
	site := NewCallSite(WithIgnoreErrors(nil, ErrorType[*RuntimeError]()))
	boom := &RuntimeError{msg: "x"}

	err := AroundErr(context.Background(), e, site, fooInvocation(), func(context.Context) error {
		return fmt.Errorf("wrapped: %w", boom)
	})
	require.ErrorIs(t, err, boom)

	msgs := sink.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "Entering")
	assert.Contains(t, msgs[1], "elapsed")
}

func TestAround_GlobalIgnoreList(t *testing.T) {
	sink := newRecordingSink(LevelTrace)
	cfg := DefaultConfig()
	cfg.IgnoreErrors = []ErrorMatcher{ErrorIs(context.Canceled)}
	e := newTestEngine(t, sink, WithConfig(cfg))

	err := AroundErr(context.Background(), e, nil, fooInvocation(), func(context.Context) error {
		return fmt.Errorf("op: %w", context.Canceled)
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sink.messages(), 2)
}

func TestAround_CallSiteOverrides(t *testing.T) {
	sink := newRecordingSink(LevelInfo)
	e := newTestEngine(t, sink)
	site := NewCallSite(
		WithDeclaringType("billing"),
		WithLevel(LevelInfo),
		WithExitedAbnormallyLevel(LevelWarn),
		WithEventLevel(EventElapsed, LevelTrace),
		WithExitedAbnormallyMessage("failed: {exception}"),
		WithoutStack(),
	)

	err := AroundErr(context.Background(), e, site, fooInvocation(), func(context.Context) error {
		return errors.New("declined")
	})
	require.Error(t, err)

	entries := sink.all()
	require.Len(t, entries, 2)
	assert.Equal(t, "billing", entries[0].category)
	assert.Equal(t, LevelInfo, entries[0].level)
	assert.Equal(t, "failed: type=errorString, message=declined", entries[1].msg)
	assert.Equal(t, LevelWarn, entries[1].level)
	assert.NoError(t, entries[1].err, "WithoutStack 不附带错误对象")
}

func TestAround_Panic(t *testing.T) {
	sink := newRecordingSink(LevelTrace)
	e := newTestEngine(t, sink)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = AroundErr(context.Background(), e, nil, fooInvocation(), func(context.Context) error {
			panic("kaboom")
		})
	})

	entries := sink.all()
	require.Len(t, entries, 3)
	assert.Contains(t, entries[1].msg, "elapsed")
	assert.Contains(t, entries[2].msg, "exception [type=PanicError, message=panic: kaboom]")
	var perr *PanicError
	require.ErrorAs(t, entries[2].err, &perr)
	assert.Equal(t, "kaboom", perr.Value)
	assert.NotEmpty(t, perr.Stack)
}

func TestAround_PanicWithIgnoredError(t *testing.T) {
	sink := newRecordingSink(LevelTrace)
	e := newTestEngine(t, sink)
	site := NewCallSite(WithIgnoreErrors(ErrorType[*RuntimeError]()))
	boom := &RuntimeError{msg: "inner"}

	assert.PanicsWithError(t, "inner", func() {
		_ = AroundErr(context.Background(), e, site, fooInvocation(), func(context.Context) error {
			panic(boom)
		})
	})
	assert.Len(t, sink.messages(), 2)
}

func TestAround_Goexit(t *testing.T) {
	sink := newRecordingSink(LevelTrace)
	e := newTestEngine(t, sink)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = AroundErr(context.Background(), e, nil, fooInvocation(), func(context.Context) error {
			runtime.Goexit()
			return nil
		})
	}()
	<-done

	msgs := sink.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "[void foo()] elapsed [1.5s]", msgs[1])
}

// panickyObserver 在 Start 或 End 时 panic。
type panickyObserver struct {
	onStart bool
}

func (o panickyObserver) Start(ctx context.Context, _ xmetrics.SpanOptions) (context.Context, xmetrics.Span) {
	if o.onStart {
		panic("observer start boom")
	}
	return ctx, panickySpan{}
}

type panickySpan struct{}

func (panickySpan) End(xmetrics.Result) { panic("span end boom") }

func TestAround_ObserverPanicIsIsolated(t *testing.T) {
	for _, tc := range []struct {
		name    string
		onStart bool
	}{
		{"start", true},
		{"end", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sink := newRecordingSink(LevelTrace)
			var reported []error
			e := newTestEngine(t, sink,
				WithObserver(panickyObserver{onStart: tc.onStart}),
				WithOnError(func(err error) { reported = append(reported, err) }))

			called := false
			got, err := Around(context.Background(), e, nil, fooInvocation(), func(context.Context) (int, error) {
				called = true
				return 42, nil
			})
			require.NoError(t, err)
			assert.True(t, called)
			assert.Equal(t, 42, got)
			assert.Equal(t, uint64(1), e.Faults())
			require.Len(t, reported, 1)
			assert.ErrorIs(t, reported[0], ErrInternalFault)
			assert.Len(t, sink.messages(), 3)
		})
	}
}

func TestAround_ObserverEndPanicOnError(t *testing.T) {
	e := newTestEngine(t, newRecordingSink(LevelTrace), WithObserver(panickyObserver{}))
	boom := &RuntimeError{msg: "foo"}

	err := AroundErr(context.Background(), e, nil, fooInvocation(), func(context.Context) error { return boom })
	assert.Same(t, boom, err)
	assert.Equal(t, uint64(1), e.Faults())
}

func TestAround_NilContextPassedThrough(t *testing.T) {
	e := newTestEngine(t, newRecordingSink(LevelTrace), WithObserver(xmetrics.NoopObserver{}))

	var seen context.Context = context.TODO()
	//nolint:staticcheck // 验证 nil ctx 原样传给 fn
	_, err := Around[int](nil, e, nil, fooInvocation(), func(ctx context.Context) (int, error) {
		seen = ctx
		return 0, nil
	})
	require.NoError(t, err)
	assert.Nil(t, seen)
}

func TestAround_SinkPanicIsIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)
	sink.EXPECT().Enabled(gomock.Any(), gomock.Any(), gomock.Any()).Return(true).AnyTimes()
	sink.EXPECT().Emit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(context.Context, string, Level, string, error) { panic("sink down") }).Times(3)

	var reported []error
	e := newTestEngine(t, sink, WithOnError(func(err error) { reported = append(reported, err) }))

	got, err := Around(context.Background(), e, nil, fooInvocation(), func(context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, uint64(3), e.Faults())
	require.Len(t, reported, 3)
	assert.ErrorIs(t, reported[0], ErrInternalFault)
}

func TestAround_EnabledPanicTreatedAsDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)
	sink.EXPECT().Enabled(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, Level) bool { panic("broken") }).AnyTimes()

	e := newTestEngine(t, sink, WithOnError(func(error) { panic("callback panics too") }))
	require.NoError(t, AroundErr(context.Background(), e, nil, fooInvocation(), func(context.Context) error { return nil }))
	assert.Equal(t, uint64(6), e.Faults())
}

func TestAround_Idempotent(t *testing.T) {
	inv := &Invocation{
		Signature: Signature{Name: "sum", ParamTypes: []string{"int", "int"}, ReturnType: "int"},
		Args:      []Arg{{Name: "a", Value: 1}, {Name: "b", Value: 2}},
	}
	run := func() []string {
		sink := newRecordingSink(LevelTrace)
		e := newTestEngine(t, sink)
		_, err := Around(context.Background(), e, nil, inv, func(context.Context) (int, error) { return 3, nil })
		require.NoError(t, err)
		return sink.messages()
	}
	first, second := run(), run()
	assert.Equal(t, first, second)
	assert.Equal(t, "Entering [int sum(int, int)] with parameters [a=1, b=2]", first[0])
	assert.Equal(t, "[int sum(int, int)] exited normally with return value [3]", first[2])
}

func TestAround_Concurrent(t *testing.T) {
	sink := newRecordingSink(LevelTrace)
	e := newTestEngine(t, sink)

	var g errgroup.Group
	for i := range 32 {
		g.Go(func() error {
			inv := &Invocation{
				Signature: Signature{DeclaringType: "worker", Name: "run", ReturnType: "int"},
				Args:      []Arg{{Name: "i", Value: i}},
			}
			got, err := Around(context.Background(), e, nil, inv, func(context.Context) (int, error) {
				return i * 2, nil
			})
			if err != nil {
				return err
			}
			if got != i*2 {
				return fmt.Errorf("got %d, want %d", got, i*2)
			}
			return nil
		})
		if i == 16 {
			cfg := DefaultConfig()
			cfg.Entering.Level = LevelInfo
			e.SetConfig(cfg)
		}
	}
	require.NoError(t, g.Wait())
	assert.Len(t, sink.all(), 32*3)
}
