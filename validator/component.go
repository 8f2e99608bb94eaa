package validator

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/component"
	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/core/state"
	_ "github.com/NethermindEth/starknet-validator/encoder/registry"
	"github.com/NethermindEth/starknet-validator/utils"
)

type RequestKind uint8

const (
	StartHeight RequestKind = iota
	ValidateTransaction
	DecisionReached
	GetHeight
)

func (k RequestKind) String() string {
	switch k {
	case StartHeight:
		return "StartHeight"
	case ValidateTransaction:
		return "ValidateTransaction"
	case DecisionReached:
		return "DecisionReached"
	case GetHeight:
		return "GetHeight"
	default:
		return fmt.Sprintf("RequestKind(%d)", uint8(k))
	}
}

type StartHeightInput struct {
	BlockInfo blockifier.BlockInfo
}

type ValidateTransactionInput struct {
	Transaction         core.TransactionEnvelope
	DeployAccountTxHash *felt.Felt
}

type DecisionReachedInput struct {
	Height uint64
}

// Request carries the input matching its Kind, GetHeight has none.
type Request struct {
	Kind                RequestKind
	StartHeight         *StartHeightInput         `cbor:",omitempty"`
	ValidateTransaction *ValidateTransactionInput `cbor:",omitempty"`
	DecisionReached     *DecisionReachedInput     `cbor:",omitempty"`
}

type GetHeightResponse struct {
	Height uint64
	// false when no height is set up
	Live bool
}

type Response struct {
	Kind   RequestKind
	Height *GetHeightResponse `cbor:",omitempty"`
	Err    *Error             `cbor:",omitempty"`
}

type (
	LocalClient  = component.LocalClient[Request, Response]
	LocalServer  = component.LocalServer[Request, Response]
	RemoteClient = component.RemoteClient[Request, Response]
	RemoteServer = component.RemoteServer[Request, Response]
)

// StateOpener returns the state a height is validated against. The closer, if any, is
// called once the height is torn down.
type StateOpener func(height uint64) (state.Reader, io.Closer, error)

// Server hosts a Validator behind the component transport, serialising the requests of
// every client.
type Server struct {
	mu        sync.Mutex
	validator *Validator
	openState StateOpener
	// closes the state of the live height
	closer io.Closer
	log    utils.SimpleLogger
}

var _ component.Handler[Request, Response] = (*Server)(nil)

func NewServer(validator *Validator, openState StateOpener, log utils.SimpleLogger) *Server {
	return &Server{
		validator: validator,
		openState: openState,
		log:       log,
	}
}

func (s *Server) Handle(ctx context.Context, req Request) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := Response{Kind: req.Kind}
	switch req.Kind {
	case StartHeight:
		if req.StartHeight == nil {
			resp.Err = missingInput(req.Kind)
			break
		}
		resp.Err = ToError(s.startHeight(req.StartHeight.BlockInfo))
	case ValidateTransaction:
		if req.ValidateTransaction == nil {
			resp.Err = missingInput(req.Kind)
			break
		}
		resp.Err = s.validateTransaction(ctx, req.ValidateTransaction)
	case DecisionReached:
		if req.DecisionReached == nil {
			resp.Err = missingInput(req.Kind)
			break
		}
		resp.Err = ToError(s.decisionReached(req.DecisionReached.Height))
	case GetHeight:
		height, live := s.validator.Height()
		resp.Height = &GetHeightResponse{Height: height, Live: live}
	default:
		resp.Err = &Error{Kind: ErrKindInternal, Message: "unknown request " + req.Kind.String()}
	}
	return resp
}

func missingInput(kind RequestKind) *Error {
	return &Error{Kind: ErrKindInternal, Message: "missing input of " + kind.String() + " request"}
}

func (s *Server) startHeight(blockInfo blockifier.BlockInfo) error {
	if height, live := s.validator.Height(); live {
		return fmt.Errorf("%w: start height %d while height %d is live", ErrLifecycleViolation,
			blockInfo.Number, height)
	}

	reader, closer, err := s.openState(blockInfo.Number)
	if err != nil {
		return fmt.Errorf("open state of height %d: %w", blockInfo.Number, err)
	}
	if err = s.validator.Setup(reader, blockInfo); err != nil {
		if closer != nil {
			return utils.RunAndWrapOnError(closer.Close, err)
		}
		return err
	}
	s.closer = closer
	return nil
}

func (s *Server) validateTransaction(ctx context.Context, input *ValidateTransactionInput) *Error {
	tx, err := input.Transaction.Transaction()
	if err != nil {
		return &Error{Kind: ErrKindInvalidTransaction, Message: err.Error()}
	}
	accountTx, err := core.AsAccountTransaction(tx)
	if err != nil {
		return &Error{Kind: ErrKindInvalidTransaction, Message: err.Error()}
	}
	return ToError(s.validator.PerformValidations(ctx, accountTx, input.DeployAccountTxHash))
}

func (s *Server) decisionReached(height uint64) error {
	if live, ok := s.validator.Height(); ok && live != height {
		return fmt.Errorf("%w: decision reached for height %d while height %d is live",
			ErrLifecycleViolation, height, live)
	}
	s.validator.Teardown()
	return s.closeState()
}

func (s *Server) closeState() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// Height reports the live height, safe to call concurrently with Handle
func (s *Server) Height() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validator.Height()
}

// Close tears the live height down, if any
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.validator.Close()
	return s.closeState()
}

// Client talks to a Server. Its errors are either *component.ClientError when the request
// or its response got lost, or *Error when validation failed.
type Client struct {
	client component.Client[Request, Response]
}

func NewClient(client component.Client[Request, Response]) *Client {
	return &Client{client: client}
}

func (c *Client) StartHeight(ctx context.Context, blockInfo blockifier.BlockInfo) error {
	_, err := c.send(ctx, Request{Kind: StartHeight, StartHeight: &StartHeightInput{BlockInfo: blockInfo}})
	return err
}

func (c *Client) ValidateTransaction(ctx context.Context, tx core.Transaction, deployAccountTxHash *felt.Felt) error {
	_, err := c.send(ctx, Request{
		Kind: ValidateTransaction,
		ValidateTransaction: &ValidateTransactionInput{
			Transaction:         core.NewTransactionEnvelope(tx),
			DeployAccountTxHash: deployAccountTxHash,
		},
	})
	return err
}

func (c *Client) DecisionReached(ctx context.Context, height uint64) error {
	_, err := c.send(ctx, Request{Kind: DecisionReached, DecisionReached: &DecisionReachedInput{Height: height}})
	return err
}

// GetHeight returns the height the server is validating, if any
func (c *Client) GetHeight(ctx context.Context) (uint64, bool, error) {
	resp, err := c.send(ctx, Request{Kind: GetHeight})
	if err != nil {
		return 0, false, err
	}
	if resp.Height == nil {
		return 0, false, &component.ClientError{
			Kind: component.UnexpectedResponse,
			Err:  fmt.Errorf("%s response without a height", resp.Kind),
		}
	}
	return resp.Height.Height, resp.Height.Live, nil
}

func (c *Client) send(ctx context.Context, req Request) (Response, error) {
	resp, err := c.client.Send(ctx, req)
	if err != nil {
		return resp, err
	}
	if resp.Kind != req.Kind {
		return resp, &component.ClientError{
			Kind: component.UnexpectedResponse,
			Err:  fmt.Errorf("got %s response to %s request", resp.Kind, req.Kind),
		}
	}
	if resp.Err != nil {
		return resp, resp.Err
	}
	return resp, nil
}
