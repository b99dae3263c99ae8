package sync

import (
	"time"

	"catalog-manager/core/manifest"
	"catalog-manager/core/reconcile"
	"catalog-manager/feature/catalog/models"
)

// Archives and scripts hang off games, tools, servers and redistributables
// alike; only the owner foreign key differs. These helpers reconcile the
// owned sets by record id and let the caller stamp the owner.

func syncArchives(local []models.Archive, remote []manifest.Archive, now time.Time, setOwner func(*models.Archive)) []models.Archive {
	out, _ := reconcile.Sync(local, remote,
		func(l models.Archive, r manifest.Archive) bool { return l.Id == r.Id },
		func(l *models.Archive, r manifest.Archive) { applyArchive(l, r, now) },
		func(r manifest.Archive) models.Archive {
			l := models.Archive{Base: models.Base{Id: r.Id, CreatedOn: r.CreatedOn}}
			setOwner(&l)
			applyArchive(&l, r, now)
			return l
		})
	return out
}

func syncScripts(local []models.Script, remote []manifest.Script, now time.Time, setOwner func(*models.Script)) []models.Script {
	out, _ := reconcile.Sync(local, remote,
		func(l models.Script, r manifest.Script) bool { return l.Id == r.Id },
		func(l *models.Script, r manifest.Script) { applyScript(l, r, now) },
		func(r manifest.Script) models.Script {
			l := models.Script{Base: models.Base{Id: r.Id, CreatedOn: r.CreatedOn}}
			setOwner(&l)
			applyScript(&l, r, now)
			return l
		})
	return out
}
