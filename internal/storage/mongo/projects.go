package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kanban/internal/models"
	"kanban/internal/storage"
)

type projectDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Color       string             `bson:"color"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d projectDoc) model() models.Project {
	return models.Project{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Color:       d.Color,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

var projectSortFields = map[storage.SortField]string{
	storage.SortCreatedAt: "createdAt",
	storage.SortUpdatedAt: "updatedAt",
	storage.SortName:      "name",
}

func projectFilter(f storage.ProjectFilter) bson.M {
	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = f.Name
	}
	idCond := bson.M{}
	if f.ExcludeID != "" {
		idCond["$ne"] = objectID(f.ExcludeID)
	}
	if f.IDs != nil {
		idCond["$in"] = objectIDs(f.IDs)
	}
	if len(idCond) > 0 {
		filter["_id"] = idCond
	}
	return filter
}

func (s *Store) FindProjects(ctx context.Context, filter storage.ProjectFilter, order storage.Sort) ([]models.Project, error) {
	cur, err := s.projects.Find(ctx, projectFilter(filter), findOptions(order, projectSortFields))
	if err != nil {
		return nil, wrap("find projects", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap("decode projects", err)
	}

	out := make([]models.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) FindProjectByID(ctx context.Context, id string) (models.Project, error) {
	var doc projectDoc
	if err := s.projects.FindOne(ctx, bson.M{"_id": objectID(id)}).Decode(&doc); err != nil {
		return models.Project{}, wrap("find project", err)
	}
	return doc.model(), nil
}

func (s *Store) InsertProject(ctx context.Context, p models.Project) (models.Project, error) {
	now := storage.Now()
	doc := projectDoc{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.projects.InsertOne(ctx, doc); err != nil {
		return models.Project{}, wrap("insert project", err)
	}
	return doc.model(), nil
}

func (s *Store) UpdateProjectByID(ctx context.Context, id string, patch models.ProjectPatch) (models.Project, error) {
	set := bson.M{"updatedAt": storage.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Color != nil {
		set["color"] = *patch.Color
	}

	var doc projectDoc
	err := s.projects.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID(id)},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return models.Project{}, wrap("update project", err)
	}
	return doc.model(), nil
}

func (s *Store) DeleteProjectByID(ctx context.Context, id string) error {
	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": objectID(id)})
	if err != nil {
		return wrap("delete project", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountProjects(ctx context.Context, filter storage.ProjectFilter) (int64, error) {
	n, err := s.projects.CountDocuments(ctx, projectFilter(filter))
	if err != nil {
		return 0, wrap("count projects", err)
	}
	return n, nil
}
