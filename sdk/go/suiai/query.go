package suiai

import (
	"context"
	"strings"

	xerrors "SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/ledger"
)

// Object type suffixes of the AI package.
const (
	agentTypeSuffix = "::ai_agent::Agent"
	modelTypeSuffix = "::ai_model::Model"
)

// GetObject fetches the current content, type and owner of an object.
// Absent objects yield CodeNotFound.
func (s *SDK) GetObject(ctx context.Context, objectID string) (ObjectSnapshot, error) {
	id, err := ledger.ParseAddress(objectID)
	if err != nil {
		return ObjectSnapshot{}, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "invalid object id")
	}
	return s.client.GetObject(ctx, id)
}

// GetAgent fetches an agent object.
func (s *SDK) GetAgent(ctx context.Context, agentID string) (ObjectSnapshot, error) {
	return s.getTyped(ctx, agentID, agentTypeSuffix)
}

// GetModel fetches a model object.
func (s *SDK) GetModel(ctx context.Context, modelID string) (ObjectSnapshot, error) {
	return s.getTyped(ctx, modelID, modelTypeSuffix)
}

func (s *SDK) getTyped(ctx context.Context, objectID, suffix string) (ObjectSnapshot, error) {
	snapshot, err := s.GetObject(ctx, objectID)
	if err != nil {
		return ObjectSnapshot{}, err
	}
	// 节点未返回类型时不做校验。
	if snapshot.Type != "" && !strings.HasSuffix(snapshot.Type, suffix) {
		return ObjectSnapshot{}, xerrors.New(xerrors.CodeInvalidArgument, "object is a "+snapshot.Type,
			xerrors.WithMetadata(xerrors.MetaObjectID, snapshot.Ref.ObjectID.String()))
	}
	return snapshot, nil
}

// QueryAgentsByOwner would list the agents owned by owner. It needs an
// indexer the SDK does not have and always fails with CodeNotImplemented.
func (s *SDK) QueryAgentsByOwner(ctx context.Context, owner string) ([]ObjectSnapshot, error) {
	if _, err := ledger.ParseAddress(owner); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "invalid owner address")
	}
	return nil, xerrors.New(xerrors.CodeNotImplemented, "querying agents by owner requires an indexer",
		xerrors.WithMetadata("query", "agents_by_owner"))
}

// QueryPublicModels would list public models. It always fails with
// CodeNotImplemented.
func (s *SDK) QueryPublicModels(ctx context.Context) ([]ObjectSnapshot, error) {
	return nil, xerrors.New(xerrors.CodeNotImplemented, "querying public models requires an indexer",
		xerrors.WithMetadata("query", "public_models"))
}
