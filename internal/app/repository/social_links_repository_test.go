package repository

import (
	"context"
	"testing"

	"github.com/lokal-app/lokal-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialLinksRepository_Upsert(t *testing.T) {
	testDB := setupRepositoryTest(t)
	repo := NewSocialLinksRepository(testDB)
	ctx := context.Background()

	business := createTestBusiness(t, testDB, "Linked Up", nil)

	require.NoError(t, repo.Upsert(ctx, &model.SocialLinks{
		BusinessID:  business.ID,
		Website:     strPtr("https://linked.example"),
		FacebookURL: strPtr("https://facebook.com/linked"),
	}))

	require.NoError(t, repo.Upsert(ctx, &model.SocialLinks{
		BusinessID: business.ID,
		Website:    strPtr("https://linked.example/new"),
		XURL:       strPtr("https://x.com/linked"),
	}))

	var count int64
	testDB.Model(&model.SocialLinks{}).Where("business_id = ?", business.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByBusiness(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://linked.example/new", *found.Website)
	assert.Equal(t, "https://x.com/linked", *found.XURL)
	assert.Nil(t, found.FacebookURL)
}

func TestImageRepository_UpsertLogoSlot(t *testing.T) {
	testDB := setupRepositoryTest(t)
	repo := NewImageRepository(testDB)
	ctx := context.Background()

	business := createTestBusiness(t, testDB, "Logo Works", nil)

	first := &model.BusinessImage{BusinessID: business.ID, ImageType: model.ImageTypeLogo, ImageIndex: model.LogoImageIndex, URL: "https://cdn.example/a.png"}
	require.NoError(t, repo.Upsert(ctx, first))

	second := &model.BusinessImage{BusinessID: business.ID, ImageType: model.ImageTypeLogo, ImageIndex: model.LogoImageIndex, URL: "https://cdn.example/b.png"}
	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	found, err := repo.FindSlot(ctx, business.ID, model.ImageTypeLogo, model.LogoImageIndex)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/b.png", found.URL)

	var count int64
	testDB.Model(&model.BusinessImage{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFeatureRepository_Proposals(t *testing.T) {
	testDB := setupRepositoryTest(t)
	repo := NewFeatureRepository(testDB)
	ctx := context.Background()

	business := createTestBusiness(t, testDB, "Feature Rich", nil)
	wifi := &model.Feature{Name: "Free Wi-Fi"}
	dogs := &model.Feature{Name: "Dog friendly"}
	require.NoError(t, testDB.Create(wifi).Error)
	require.NoError(t, testDB.Create(dogs).Error)

	found, err := repo.FindByIDs(ctx, []uint{wifi.ID, dogs.ID, 999})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	byName, err := repo.FindByNames(ctx, []string{"Dog friendly"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, dogs.ID, byName[0].ID)

	require.NoError(t, repo.CreateProposals(ctx, []*model.FeatureProposal{
		{BusinessID: business.ID, FeatureID: wifi.ID, Score: floatPtr(0.8), Status: model.ProposalPending},
		{BusinessID: business.ID, FeatureID: dogs.ID, Status: model.ProposalPending},
	}))

	proposals, err := repo.FindProposalsByBusiness(ctx, business.ID)
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.Equal(t, "Free Wi-Fi", proposals[0].Feature.Name)
	assert.Equal(t, model.ProposalPending, proposals[0].Status)
	assert.Nil(t, proposals[1].Score)
}
