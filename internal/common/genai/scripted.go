package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"ingres-assistant/internal/common/errors"
)

// Reply is a canned model answer.
type Reply struct {
	Text string
	Err  error
}

// ScriptedModel answers from per-operation queues. When a queue is empty the
// operation's fallback is used; with no fallback the call fails upstream.
type ScriptedModel struct {
	mu        sync.Mutex
	queues    map[string][]Reply
	fallbacks map[string]func(Request) Reply
	calls     []Request
}

func NewScriptedModel() *ScriptedModel {
	return &ScriptedModel{
		queues:    make(map[string][]Reply),
		fallbacks: make(map[string]func(Request) Reply),
	}
}

// Enqueue appends replies for op, consumed in order.
func (m *ScriptedModel) Enqueue(op string, replies ...Reply) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[op] = append(m.queues[op], replies...)
	return m
}

// EnqueueJSON marshals v and enqueues it as a successful reply.
func (m *ScriptedModel) EnqueueJSON(op string, v interface{}) *ScriptedModel {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("scripted reply for %s: %v", op, err))
	}
	return m.Enqueue(op, Reply{Text: string(raw)})
}

// Fallback answers op whenever its queue is empty.
func (m *ScriptedModel) Fallback(op string, fn func(Request) Reply) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks[op] = fn
	return m
}

func (m *ScriptedModel) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewUpstreamTimeoutError(err)
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	var reply Reply
	if q := m.queues[req.Operation]; len(q) > 0 {
		reply = q[0]
		m.queues[req.Operation] = q[1:]
	} else if fn, ok := m.fallbacks[req.Operation]; ok {
		m.mu.Unlock()
		reply = fn(req)
		m.mu.Lock()
	} else {
		reply = Reply{Err: errors.NewUpstreamFailedError(fmt.Errorf("no scripted reply for %s", req.Operation))}
	}
	m.mu.Unlock()

	return reply.Text, reply.Err
}

// Calls returns the requests received so far.
func (m *ScriptedModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns the requests received for op.
func (m *ScriptedModel) CallsFor(op string) []Request {
	var out []Request
	for _, c := range m.Calls() {
		if c.Operation == op {
			out = append(out, c)
		}
	}
	return out
}

// NewOfflineModel backs `genai.provider: mock`. Every question is treated as
// a help request and no data is produced, so the server is usable without a key.
func NewOfflineModel() *ScriptedModel {
	return NewScriptedModel().
		Fallback(OpInterpret, func(Request) Reply {
			return Reply{Text: `{"intent":"help","language":"en"}`}
		}).
		Fallback(OpGenerate, func(Request) Reply {
			return Reply{Text: `{"response":"The assistant is running without a language model. Ask about a state's latest assessment, for example \"Groundwater status in Punjab 2025\".","data":{"assessments":[]}}`}
		}).
		Fallback(OpFollowUps, func(Request) Reply {
			return Reply{Text: `{"questions":[]}`}
		}).
		Fallback(OpTranslate, func(req Request) Reply {
			raw, _ := json.Marshal(map[string]string{"translatedText": req.Content})
			return Reply{Text: string(raw)}
		})
}
