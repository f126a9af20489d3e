package services_test

import (
	"context"
	"testing"

	"fitlog-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squatDay() services.RoutineInput {
	return services.RoutineInput{
		Name: "Leg day",
		Exercises: []services.ExerciseInput{
			{Name: "Squat", Sets: 5, RepLower: 5, RepUpper: 5, Weight: 100},
			{Name: "Lunge", Sets: 3, RepLower: 8, RepUpper: 12, Weight: 0},
		},
	}
}

func TestRoutineInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *services.RoutineInput)
		wantErr bool
	}{
		{"Корректная программа", func(in *services.RoutineInput) {}, false},
		{"Без названия", func(in *services.RoutineInput) { in.Name = "  " }, true},
		{"Без упражнений", func(in *services.RoutineInput) { in.Exercises = nil }, true},
		{"Упражнение без названия", func(in *services.RoutineInput) { in.Exercises[0].Name = "" }, true},
		{"Ноль подходов", func(in *services.RoutineInput) { in.Exercises[0].Sets = 0 }, true},
		{"Ноль повторений", func(in *services.RoutineInput) { in.Exercises[0].RepLower = 0 }, true},
		{"Нижняя граница больше верхней", func(in *services.RoutineInput) { in.Exercises[1].RepLower = 15 }, true},
		{"Отрицательный вес", func(in *services.RoutineInput) { in.Exercises[0].Weight = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := squatDay()
			tt.mutate(&in)
			_, err := in.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, services.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoutineService_CRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	routines := services.NewRoutineService(db)
	alice := createUser(t, db, "Alice")
	bob := createUser(t, db, "Bob")

	created, err := routines.Create(ctx, alice, squatDay())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.Len(t, created.Exercises, 2)

	t.Run("Список программ", func(t *testing.T) {
		list, err := routines.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Leg day", list[0].Name)
		require.Len(t, list[0].Exercises, 2)
		assert.Equal(t, "Squat", list[0].Exercises[0].Name)

		other, err := routines.List(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("Чужая программа недоступна", func(t *testing.T) {
		_, err := routines.Get(ctx, bob, created.ID)
		assert.ErrorIs(t, err, services.ErrRoutineNotFound)

		_, err = routines.Update(ctx, bob, created.ID, squatDay())
		assert.ErrorIs(t, err, services.ErrRoutineNotFound)

		assert.ErrorIs(t, routines.Delete(ctx, bob, created.ID), services.ErrRoutineNotFound)
	})

	t.Run("Замена упражнений", func(t *testing.T) {
		in := services.RoutineInput{
			Name:      "Push day",
			Exercises: []services.ExerciseInput{{Name: "Bench", Sets: 3, RepLower: 6, RepUpper: 8, Weight: 70}},
		}
		updated, err := routines.Update(ctx, alice, created.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "Push day", updated.Name)
		require.Len(t, updated.Exercises, 1)
		assert.Equal(t, "Bench", updated.Exercises[0].Name)
	})

	t.Run("Удаление", func(t *testing.T) {
		require.NoError(t, routines.Delete(ctx, alice, created.ID))

		_, err := routines.Get(ctx, alice, created.ID)
		assert.ErrorIs(t, err, services.ErrRoutineNotFound)

		var exercises int64
		require.NoError(t, db.Table("exercises").Count(&exercises).Error)
		assert.Zero(t, exercises)
	})
}
